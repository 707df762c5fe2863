// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"
	"net/http"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/in/http/middleware"
	pgrepo "storefront/internal/adapters/out/db"
	fsrepo "storefront/internal/adapters/out/firestore"
	gcsrepo "storefront/internal/adapters/out/gcs"
	mailadapter "storefront/internal/adapters/out/mail"
	redisadapter "storefront/internal/adapters/out/redis"
	tokenadapter "storefront/internal/adapters/out/token"
	usecase "storefront/internal/application/usecase"
	authdom "storefront/internal/domain/auth"
	commentdom "storefront/internal/domain/comment"
	productdom "storefront/internal/domain/product"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/platform/di/shared"
)

// Container は main.go から使う依存オブジェクトの束。
// main.go を薄く保つのが目的。
type Container struct {
	Infra *shared.Infra

	// Usecases (exported for cmd/createstaff etc.)
	ProductUC  *usecase.ProductUsecase
	CategoryUC *usecase.CategoryUsecase
	CommentUC  *usecase.CommentUsecase
	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	OrderUC    *usecase.OrderUsecase
	PaymentUC  *usecase.PaymentUsecase
	UserUC     *usecase.UserUsecase

	auth *middleware.AuthMiddleware
}

// Build は DI コンテナを初期化して返す。
// - 外部クライアントを Infra で組み立てる
// - Repository 実装と Usecase をつなぐ
func Build(ctx context.Context, cfg *appcfg.Config) (*Container, error) {
	// ------------------------------------------------------------
	// 1. 外部リソース初期化
	// ------------------------------------------------------------
	inf, err := shared.NewInfra(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// ------------------------------------------------------------
	// 2. Repository (outbound adapter)
	// ------------------------------------------------------------
	sqlDB := inf.DB.Client
	tx := pgrepo.NewTxManagerPG(sqlDB)
	userRepo := pgrepo.NewUserRepositoryPG(sqlDB)
	categoryRepo := pgrepo.NewCategoryRepositoryPG(sqlDB)
	productRepo := pgrepo.NewProductRepositoryPG(sqlDB)
	cartRepo := pgrepo.NewCartRepositoryPG(sqlDB)
	orderRepo := pgrepo.NewOrderRepositoryPG(sqlDB)

	var commentRepo commentdom.Repository
	switch inf.Settings.CommentsBackend {
	case appcfg.CommentsBackendFirestore:
		commentRepo = fsrepo.NewCommentRepositoryFS(inf.Firestore)
	default:
		commentRepo = pgrepo.NewCommentRepositoryPG(sqlDB)
	}
	log.Printf("[di] comments backend=%s", inf.Settings.CommentsBackend)

	// interface に typed nil を入れない
	var images productdom.ImageStore
	if inf.GCS != nil {
		images = gcsrepo.NewProductImageRepositoryGCS(inf.GCS, inf.Settings.ProductImageBucket)
	}
	var revoker authdom.Revoker
	if inf.Redis != nil {
		revoker = redisadapter.NewTokenDenylist(inf.Redis)
	}

	tokens, err := tokenadapter.NewJWTIssuer(inf.Settings.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		inf.Close(ctx)
		return nil, fmt.Errorf("di: jwt issuer: %w", err)
	}
	notifier := mailadapter.NewOrderNotifier(cfg.SendGridAPIKey, cfg.SendGridFrom)

	// ------------------------------------------------------------
	// 3. Usecase
	// ------------------------------------------------------------
	c := &Container{
		Infra:      inf,
		ProductUC:  usecase.NewProductUsecase(tx, productRepo, categoryRepo, commentRepo, images),
		CategoryUC: usecase.NewCategoryUsecase(categoryRepo, productRepo),
		CommentUC:  usecase.NewCommentUsecase(commentRepo, productRepo),
		CartUC:     usecase.NewCartUsecase(tx, cartRepo, productRepo),
		CheckoutUC: usecase.NewCheckoutUsecase(tx, cartRepo, productRepo, orderRepo, notifier),
		OrderUC:    usecase.NewOrderUsecase(tx, orderRepo),
		PaymentUC:  usecase.NewPaymentUsecase(tx, orderRepo),
		UserUC:     usecase.NewUserUsecase(userRepo, tokens, revoker),
		auth:       &middleware.AuthMiddleware{Tokens: tokens, Revoker: revoker, Users: userRepo},
	}
	return c, nil
}

// RouterDeps は httpin.NewRouter に渡す依存の束を返す。
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		ProductUC:      c.ProductUC,
		CategoryUC:     c.CategoryUC,
		CommentUC:      c.CommentUC,
		CartUC:         c.CartUC,
		CheckoutUC:     c.CheckoutUC,
		OrderUC:        c.OrderUC,
		PaymentUC:      c.PaymentUC,
		UserUC:         c.UserUC,
		Auth:           c.auth,
		AllowedOrigins: c.Infra.Settings.AllowedOrigins,
		ServiceName:    c.Infra.Settings.ServiceName,
	}
}

func (c *Container) Handler() http.Handler {
	return httpin.NewRouter(c.RouterDeps())
}

// Close は終了時に呼んで安全にリソースを閉じる。
func (c *Container) Close(ctx context.Context) {
	if c == nil {
		return
	}
	// 送信中の注文メールを待ってから閉じる
	if c.CheckoutUC != nil {
		c.CheckoutUC.WaitNotifications()
	}
	c.Infra.Close(ctx)
}
