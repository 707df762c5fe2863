// internal/adapters/out/redis/token_denylist.go
package redis

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"

	authdom "storefront/internal/domain/auth"
)

const keyPrefix = "storefront:revoked:"

// TokenDenylist implements auth.Revoker on Redis. Each revoked jti is a key
// that expires together with the token it blocks.
type TokenDenylist struct {
	client *goredis.Client
	now    func() time.Time
}

var _ authdom.Revoker = (*TokenDenylist)(nil)

func NewTokenDenylist(client *goredis.Client) *TokenDenylist {
	return &TokenDenylist{client: client, now: time.Now}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opt), nil
}

func (d *TokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, keyPrefix+jti, "1", ttl).Err()
}

func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := d.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
