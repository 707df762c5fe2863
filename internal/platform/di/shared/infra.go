// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	goredis "github.com/go-redis/redis/v8"

	redisadapter "storefront/internal/adapters/out/redis"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
	firestoreinfra "storefront/internal/infra/firestore"
	"storefront/internal/infra/secrets"
	"storefront/internal/infra/telemetry"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Postgres/Redis/GCS/Firestore/SecretManager)
// - owns the tracer provider
// - owns config-resolved runtime settings
//
// IMPORTANT:
// Infra must NOT depend on routers, handlers or usecases.
type Infra struct {
	Config   *appcfg.Config
	Settings RuntimeSettings

	// Clients (owned; Close-managed). Optional ones stay nil when not configured.
	DB        *database.DB
	Redis     *goredis.Client
	GCS       *storage.Client
	Firestore *firestore.Client
	Secrets   *secrets.Provider

	shutdownTracing telemetry.Shutdown
}

// NewInfra initializes shared infra.
// Postgres and the JWT secret are strict (return error).
// Redis, GCS and telemetry are best-effort (warn + continue).
// Firestore is strict only when it backs comments.
func NewInfra(ctx context.Context, cfg *appcfg.Config) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	settings, warns, err := ResolveRuntimeSettings(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range warns {
		log.Printf("[shared.infra] WARN: %s", w)
	}

	inf := &Infra{Config: cfg, Settings: settings}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	clientOpts := firestoreinfra.ClientOptions(credFile)
	if credFile != "" {
		log.Printf("[shared.infra] Using credentials file for GCP clients: %s", redactPath(credFile))
	}

	// 1) Telemetry (best-effort)
	{
		shutdown, err := telemetry.Setup(ctx, settings.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			log.Printf("[shared.infra] WARN: telemetry setup failed: %v (tracing disabled)", err)
			shutdown = func(context.Context) error { return nil }
		}
		inf.shutdownTracing = shutdown
	}

	// 2) Secret Manager (only when the JWT key lives there)
	if settings.JWTSecret == "" && settings.JWTSecretName != "" {
		sp, err := secrets.NewProvider(ctx, cfg.GCPProjectID, clientOpts...)
		if err != nil {
			inf.Close(ctx)
			return nil, fmt.Errorf("shared.infra: secret manager: %w", err)
		}
		inf.Secrets = sp
		key, err := sp.Get(ctx, settings.JWTSecretName)
		if err != nil {
			inf.Close(ctx)
			return nil, fmt.Errorf("shared.infra: read jwt secret %q: %w", settings.JWTSecretName, err)
		}
		inf.Settings.JWTSecret = key
		log.Printf("[shared.infra] JWT secret loaded from Secret Manager name=%s", settings.JWTSecretName)
	}
	if err := inf.Settings.Validate(); err != nil {
		inf.Close(ctx)
		return nil, err
	}

	// 3) Postgres (strict)
	{
		db, err := database.NewConnection(ctx, cfg.DSN())
		if err != nil {
			inf.Close(ctx)
			return nil, fmt.Errorf("shared.infra: postgres: %w", err)
		}
		inf.DB = db
		log.Printf("[shared.infra] Postgres connected")

		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db.Client); err != nil {
				inf.Close(ctx)
				return nil, fmt.Errorf("shared.infra: migrate: %w", err)
			}
			log.Printf("[shared.infra] schema migrated (%d tables)", len(database.Schemas))
		}
	}

	// 4) Redis (best-effort; token denylist)
	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		rc, err := redisadapter.NewClient(url)
		if err != nil {
			log.Printf("[shared.infra] WARN: REDIS_URL is invalid: %v (logout will not revoke tokens)", err)
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			if err := rc.Ping(pingCtx).Err(); err != nil {
				log.Printf("[shared.infra] WARN: redis ping failed: %v (will retry per request)", err)
			}
			cancel()
			inf.Redis = rc
			log.Printf("[shared.infra] Redis client initialized")
		}
	} else {
		log.Printf("[shared.infra] INFO: REDIS_URL not set, token denylist disabled")
	}

	// 5) GCS (best-effort; product images)
	if settings.ProductImageBucket != "" {
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[shared.infra] WARN: storage.NewClient failed: %v (image upload disabled)", err)
		} else {
			inf.GCS = gcsClient
			log.Printf("[shared.infra] GCS storage client initialized bucket=%s", settings.ProductImageBucket)
		}
	}

	// 6) Firestore (strict when it backs comments)
	if settings.CommentsBackend == appcfg.CommentsBackendFirestore {
		fsClient, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, credFile)
		if err != nil {
			inf.Close(ctx)
			return nil, fmt.Errorf("shared.infra: firestore (project=%s): %w", cfg.FirestoreProjectID, err)
		}
		inf.Firestore = fsClient
		log.Printf("[shared.infra] Firestore connected project=%s", cfg.FirestoreProjectID)
	}

	return inf, nil
}

// Close releases every owned client. Safe on a partially built Infra.
func (i *Infra) Close(ctx context.Context) {
	if i == nil {
		return
	}
	if i.Firestore != nil {
		if err := i.Firestore.Close(); err != nil {
			log.Printf("[shared.infra] WARN: firestore close: %v", err)
		}
	}
	if i.GCS != nil {
		if err := i.GCS.Close(); err != nil {
			log.Printf("[shared.infra] WARN: storage close: %v", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			log.Printf("[shared.infra] WARN: redis close: %v", err)
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			log.Printf("[shared.infra] WARN: postgres close: %v", err)
		}
	}
	if i.Secrets != nil {
		if err := i.Secrets.Close(); err != nil {
			log.Printf("[shared.infra] WARN: secret manager close: %v", err)
		}
	}
	if i.shutdownTracing != nil {
		if err := i.shutdownTracing(ctx); err != nil {
			log.Printf("[shared.infra] WARN: telemetry shutdown: %v", err)
		}
	}
}

// redactPath keeps only the file name in logs.
func redactPath(p string) string {
	if p == "" {
		return ""
	}
	return ".../" + filepath.Base(p)
}
