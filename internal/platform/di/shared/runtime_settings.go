// internal/platform/di/shared/runtime_settings.go
package shared

import (
	"errors"
	"strings"

	appcfg "storefront/internal/infra/config"
)

const (
	defaultServiceName = "storefront-api"
	minJWTSecretLength = 32
)

// RuntimeSettings is env/config-resolved runtime settings (normalized once).
// It contains only values (no external clients).
type RuntimeSettings struct {
	// JWT signing key. Filled from JWT_SECRET here, or from Secret Manager by NewInfra.
	JWTSecret     string
	JWTSecretName string

	CommentsBackend    string
	ProductImageBucket string
	AllowedOrigins     []string
	ServiceName        string
}

// ResolveRuntimeSettings resolves and normalizes runtime settings from cfg.
// Side-effect free; warnings are returned so callers can decide how to surface them.
func ResolveRuntimeSettings(cfg *appcfg.Config) (RuntimeSettings, []string, error) {
	if cfg == nil {
		return RuntimeSettings{}, nil, errors.New("shared.runtime_settings: cfg is nil")
	}

	var warns []string
	s := RuntimeSettings{
		JWTSecret:          strings.TrimSpace(cfg.JWTSecret),
		JWTSecretName:      strings.TrimSpace(cfg.JWTSecretName),
		CommentsBackend:    strings.ToLower(strings.TrimSpace(cfg.CommentsBackend)),
		ProductImageBucket: strings.TrimSpace(cfg.ProductImageBucket),
		ServiceName:        strings.TrimSpace(cfg.OTELServiceName),
	}
	if s.CommentsBackend == "" {
		s.CommentsBackend = appcfg.CommentsBackendPostgres
	}
	if s.ServiceName == "" {
		s.ServiceName = defaultServiceName
	}
	for _, o := range cfg.CORSAllowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			s.AllowedOrigins = append(s.AllowedOrigins, o)
		}
	}

	if s.ProductImageBucket == "" {
		warns = append(warns, "PRODUCT_IMAGE_BUCKET is empty (image upload returns 503)")
	}
	if len(s.AllowedOrigins) == 0 {
		warns = append(warns, "CORS_ALLOWED_ORIGINS is empty (cross-origin requests are rejected)")
	}
	if s.JWTSecret != "" && len(s.JWTSecret) < minJWTSecretLength {
		warns = append(warns, "JWT_SECRET is shorter than 32 bytes")
	}
	return s, warns, nil
}

func normalizeOrigin(o string) string {
	return strings.TrimRight(strings.TrimSpace(o), "/")
}
