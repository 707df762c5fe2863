// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"storefront/internal/domain/apperr"
	authdom "storefront/internal/domain/auth"
	"storefront/internal/domain/permission"
	userdom "storefront/internal/domain/user"
)

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var (
	ctxKeyActor  = ctxKey{name: "actor"}
	ctxKeyClaims = ctxKey{name: "claims"}
)

// AuthMiddleware は
//
//   - Authorization: Bearer <ACCESS_TOKEN>
//
// を検証し、permission.Actor と token claims を context に詰めて次のハンドラへ渡す。
// ヘッダが無いリクエストは匿名として通す（各 usecase が権限を判定）。
type AuthMiddleware struct {
	Tokens  authdom.TokenService
	Revoker authdom.Revoker // nil なら失効チェックなし
	Users   userdom.Repository
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), permission.Anonymous())))
			return
		}

		if m.Tokens == nil || m.Users == nil {
			unauthorized(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		scheme, raw, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			unauthorized(w, "Authorization header must contain a bearer token.", http.StatusUnauthorized)
			return
		}

		claims, err := m.Tokens.Parse(raw, authdom.TokenAccess)
		if err != nil {
			unauthorized(w, apperr.PublicMessage(err), http.StatusUnauthorized)
			return
		}

		if m.Revoker != nil {
			revoked, err := m.Revoker.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				log.Printf("[auth] revocation check failed jti=%s err=%v", claims.ID, err)
				unauthorized(w, "Token could not be verified.", http.StatusServiceUnavailable)
				return
			}
			if revoked {
				unauthorized(w, apperr.PublicMessage(authdom.ErrRevoked), http.StatusUnauthorized)
				return
			}
		}

		// is_staff / is_active は DB から取り直す（token 発行後の変更を反映）
		u, err := m.Users.GetByID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				unauthorized(w, "User not found.", http.StatusUnauthorized)
				return
			}
			log.Printf("[auth] load user failed uid=%s err=%v", claims.Subject, err)
			unauthorized(w, "internal server error", http.StatusInternalServerError)
			return
		}
		if !u.IsActive {
			unauthorized(w, "User is inactive.", http.StatusUnauthorized)
			return
		}

		ctx := WithActor(r.Context(), permission.Actor{UserID: u.ID, Username: u.Username, IsStaff: u.IsStaff})
		ctx = context.WithValue(ctx, ctxKeyClaims, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func WithActor(ctx context.Context, a permission.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, a)
}

// CurrentActor は現在の呼び出し元。未設定なら匿名。
func CurrentActor(r *http.Request) permission.Actor {
	if a, ok := r.Context().Value(ctxKeyActor).(permission.Actor); ok {
		return a
	}
	return permission.Anonymous()
}

// CurrentClaims は検証済み access token の claims（匿名なら ok=false）。
func CurrentClaims(r *http.Request) (authdom.Claims, bool) {
	c, ok := r.Context().Value(ctxKeyClaims).(authdom.Claims)
	return c, ok
}
