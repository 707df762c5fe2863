// internal/adapters/out/token/jwt_issuer.go
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	authdom "storefront/internal/domain/auth"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
	issuer            = "storefront"
)

// claims is the wire form. sub / jti / exp / iat / iss come from the
// registered set.
type claims struct {
	Username string `json:"username"`
	Staff    bool   `json:"staff"`
	Type     string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTIssuer signs HS256 access and refresh tokens.
type JWTIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ authdom.TokenService = (*JWTIssuer)(nil)

func NewJWTIssuer(secret string, accessTTL, refreshTTL time.Duration) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}, nil
}

func (j *JWTIssuer) IssuePair(s authdom.Subject) (authdom.TokenPair, error) {
	access, err := j.sign(s, authdom.TokenAccess, j.accessTTL)
	if err != nil {
		return authdom.TokenPair{}, err
	}
	refresh, err := j.sign(s, authdom.TokenRefresh, j.refreshTTL)
	if err != nil {
		return authdom.TokenPair{}, err
	}
	return authdom.TokenPair{Access: access, Refresh: refresh}, nil
}

func (j *JWTIssuer) IssueAccess(s authdom.Subject) (string, error) {
	return j.sign(s, authdom.TokenAccess, j.accessTTL)
}

func (j *JWTIssuer) sign(s authdom.Subject, typ authdom.TokenType, ttl time.Duration) (string, error) {
	now := j.now()
	c := claims{
		Username: s.Username,
		Staff:    s.IsStaff,
		Type:     string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   s.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
}

// Parse rejects anything that is not an unexpired HS256 token of type want.
func (j *JWTIssuer) Parse(raw string, want authdom.TokenType) (authdom.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return authdom.Claims{}, authdom.ErrInvalidToken
	}
	var c claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return j.secret, nil })
	if err != nil {
		return authdom.Claims{}, authdom.ErrInvalidToken
	}
	if c.Type != string(want) || c.Subject == "" || c.ExpiresAt == nil {
		return authdom.Claims{}, authdom.ErrInvalidToken
	}
	return authdom.Claims{
		ID:        c.ID,
		Subject:   c.Subject,
		Username:  c.Username,
		Staff:     c.Staff,
		Type:      want,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
