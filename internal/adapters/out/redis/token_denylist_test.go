package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDenylist(t *testing.T) (*TokenDenylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenDenylist(client), mr
}

func TestTokenDenylist_RevokeUntilExpiry(t *testing.T) {
	d, mr := newDenylist(t)
	ctx := context.Background()

	ok, err := d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Revoke(ctx, "jti-1", time.Now().Add(5*time.Minute)))
	ok, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists(keyPrefix+"jti-1"))
	assert.InDelta(t, (5 * time.Minute).Seconds(), mr.TTL(keyPrefix+"jti-1").Seconds(), 2)

	mr.FastForward(6 * time.Minute)
	ok, err = d.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, ok, "entry disappears with the token")
}

func TestTokenDenylist_IgnoresExpiredAndEmpty(t *testing.T) {
	d, mr := newDenylist(t)
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "old", time.Now().Add(-time.Second)))
	require.NoError(t, d.Revoke(ctx, "", time.Now().Add(time.Hour)))
	assert.Empty(t, mr.Keys())
}

func TestTokenDenylist_RedisDown(t *testing.T) {
	d, mr := newDenylist(t)
	mr.Close()
	_, err := d.IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("redis://localhost:6379/2")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Options().DB)
	_ = c.Close()

	_, err = NewClient("http://nope")
	assert.Error(t, err)
}
