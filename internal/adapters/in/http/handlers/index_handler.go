// internal/adapters/in/http/handlers/index_handler.go
package handlers

import "net/http"

// Index は GET /api で公開エンドポイントの一覧を返す。
func Index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"products":   "/api/products/",
		"categories": "/api/categories/",
		"comments":   "/api/comments/",
		"cart":       "/api/cart/",
		"orders":     "/api/orders/",
		"register":   "/api/users/register/",
		"login":      "/api/users/login/",
		"refresh":    "/api/users/token/refresh/",
	})
}

func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
