// internal/platform/di/shared/runtime_settings_validate.go
package shared

import (
	"fmt"
	"strings"

	appcfg "storefront/internal/infra/config"
)

// Validate performs hard validation for RuntimeSettings.
// Optional features stay disabled when their settings are empty; only
// structurally invalid values fail.
func (s RuntimeSettings) Validate() error {
	if s.JWTSecret == "" && s.JWTSecretName == "" {
		return fmt.Errorf("shared.runtime_settings: JWT secret is not configured")
	}

	switch s.CommentsBackend {
	case appcfg.CommentsBackendPostgres, appcfg.CommentsBackendFirestore:
	default:
		return fmt.Errorf("shared.runtime_settings: unknown comments backend %q", s.CommentsBackend)
	}

	// GCS bucket names cannot contain spaces or slashes.
	if strings.ContainsAny(s.ProductImageBucket, " \t\r\n/") {
		return fmt.Errorf("shared.runtime_settings: ProductImageBucket is not a bucket name (got %q)", s.ProductImageBucket)
	}

	for _, o := range s.AllowedOrigins {
		if o == "*" {
			continue
		}
		if !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			return fmt.Errorf("shared.runtime_settings: CORS origin must start with http:// or https:// (got %q)", o)
		}
		rest := o[strings.Index(o, "://")+3:]
		if rest == "" || strings.Contains(rest, "/") {
			return fmt.Errorf("shared.runtime_settings: CORS origin must be scheme://host[:port] (got %q)", o)
		}
	}
	return nil
}
