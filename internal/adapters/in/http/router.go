// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/adapters/in/http/handlers"
	"storefront/internal/adapters/in/http/middleware"
	usecase "storefront/internal/application/usecase"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	ProductUC  *usecase.ProductUsecase
	CategoryUC *usecase.CategoryUsecase
	CommentUC  *usecase.CommentUsecase
	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	OrderUC    *usecase.OrderUsecase
	PaymentUC  *usecase.PaymentUsecase
	UserUC     *usecase.UserUsecase

	Auth           *middleware.AuthMiddleware
	AllowedOrigins []string

	// ServiceName は otelhttp の operation 名
	ServiceName string
}

// NewRouter sets up HTTP routing for all domain endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 末尾スラッシュ有無どちらも受ける
	r.Use(chimw.StripSlashes)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(middleware.Recover)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"method not allowed"}`))
	})

	// Health check (always on)
	r.Get("/healthz", handlers.Healthz)

	r.Route("/api", func(api chi.Router) {
		if deps.Auth != nil {
			api.Use(deps.Auth.Handler)
		}
		api.Get("/", handlers.Index)

		// 以降、Usecase が存在するものだけマウントする
		if deps.ProductUC != nil {
			api.Route("/products", handlers.NewProductHandler(deps.ProductUC).Routes)
		}
		if deps.CategoryUC != nil {
			api.Route("/categories", handlers.NewCategoryHandler(deps.CategoryUC).Routes)
		}
		if deps.CommentUC != nil {
			api.Route("/comments", handlers.NewCommentHandler(deps.CommentUC).Routes)
		}
		if deps.CartUC != nil {
			api.Route("/cart", handlers.NewCartHandler(deps.CartUC).Routes)
		}
		if deps.CheckoutUC != nil && deps.OrderUC != nil && deps.PaymentUC != nil {
			api.Route("/orders", handlers.NewOrderHandler(deps.CheckoutUC, deps.OrderUC, deps.PaymentUC).Routes)
		}
		if deps.UserUC != nil {
			api.Route("/users", handlers.NewUserHandler(deps.UserUC).Routes)
		}
	})

	name := deps.ServiceName
	if name == "" {
		name = "storefront-api"
	}

	// CORS は Recover の外側（panic 時の 500 にもヘッダを付ける）
	var h http.Handler = r
	h = middleware.CORS(deps.AllowedOrigins)(h)
	return otelhttp.NewHandler(h, name)
}
