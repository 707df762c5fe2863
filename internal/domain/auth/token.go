// internal/domain/auth/token.go
package auth

import (
	"context"
	"time"

	"storefront/internal/domain/apperr"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken = apperr.New(apperr.KindUnauthorized, "Token is invalid or expired")
	ErrRevoked      = apperr.New(apperr.KindUnauthorized, "Token is blacklisted")
)

// Claims is what a verified bearer token says about its holder.
type Claims struct {
	ID        string // jti
	Subject   string // user id
	Username  string
	Staff     bool
	Type      TokenType
	ExpiresAt time.Time
}

type TokenPair struct {
	Access  string
	Refresh string
}

// Subject is the identity encoded into new tokens.
type Subject struct {
	UserID   string
	Username string
	IsStaff  bool
}

// TokenService signs and verifies bearer tokens.
type TokenService interface {
	IssuePair(s Subject) (TokenPair, error)
	IssueAccess(s Subject) (string, error)
	// Parse verifies signature, expiry and that the token is of type want.
	Parse(raw string, want TokenType) (Claims, error)
}

// Revoker keeps a denylist of token ids until their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
