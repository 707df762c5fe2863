// internal/infra/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CommentsBackendPostgres  = "postgres"
	CommentsBackendFirestore = "firestore"
)

// Config はアプリケーション全体の設定を保持します。
// CONFIG_FILE (YAML) を読み込んだあと、環境変数で上書きします。
type Config struct {
	Port string `yaml:"port"`

	// PostgreSQL. DatabaseURL があれば DB_* より優先。
	DatabaseURL string `yaml:"database_url"`
	DBHost      string `yaml:"db_host"`
	DBPort      string `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	DBSSLMode   string `yaml:"db_sslmode"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// JWT. JWTSecretName があれば Secret Manager から取得。
	JWTSecret       string        `yaml:"jwt_secret"`
	JWTSecretName   string        `yaml:"jwt_secret_name"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`

	GCPProjectID string `yaml:"gcp_project_id"`
	GCPCreds     string `yaml:"google_application_credentials"`

	// 任意の外部サービス（空なら無効）
	RedisURL                 string `yaml:"redis_url"`
	CommentsBackend          string `yaml:"comments_backend"`
	FirestoreProjectID       string `yaml:"firestore_project_id"`
	FirestoreCredentialsFile string `yaml:"firestore_credentials_file"`
	ProductImageBucket       string `yaml:"product_image_bucket"`
	SendGridAPIKey           string `yaml:"sendgrid_api_key"`
	SendGridFrom             string `yaml:"sendgrid_from"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	OTLPEndpoint    string `yaml:"otel_exporter_otlp_endpoint"`
	OTELServiceName string `yaml:"otel_service_name"`
}

// Load は CONFIG_FILE → 環境変数の順に読み込み Config を返します。
func Load() (*Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		DBPort:             "5432",
		DBSSLMode:          "disable",
		AccessTokenTTL:     5 * time.Minute,
		RefreshTokenTTL:    24 * time.Hour,
		CommentsBackend:    CommentsBackendPostgres,
		SendGridFrom:       "no-reply@storefront.local",
		CORSAllowedOrigins: []string{"*"},
		OTELServiceName:    "storefront-api",
	}
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getenvDefault("PORT", c.Port)

	c.DatabaseURL = getenvDefault("DATABASE_URL", c.DatabaseURL)
	c.DBHost = getenvDefault("DB_HOST", c.DBHost)
	c.DBPort = getenvDefault("DB_PORT", c.DBPort)
	c.DBUser = getenvDefault("DB_USER", c.DBUser)
	c.DBPassword = getenvDefault("DB_PASSWORD", c.DBPassword)
	c.DBName = getenvDefault("DB_NAME", c.DBName)
	c.DBSSLMode = getenvDefault("DB_SSLMODE", c.DBSSLMode)

	c.JWTSecret = getenvDefault("JWT_SECRET", c.JWTSecret)
	c.JWTSecretName = getenvDefault("JWT_SECRET_NAME", c.JWTSecretName)

	c.GCPProjectID = getenvDefault("GCP_PROJECT_ID", c.GCPProjectID)
	c.GCPCreds = getenvDefault("GOOGLE_APPLICATION_CREDENTIALS", c.GCPCreds)

	c.RedisURL = getenvDefault("REDIS_URL", c.RedisURL)
	c.CommentsBackend = strings.ToLower(getenvDefault("COMMENTS_BACKEND", c.CommentsBackend))
	c.FirestoreProjectID = getenvDefault("FIRESTORE_PROJECT_ID", c.FirestoreProjectID)
	if c.FirestoreProjectID == "" {
		c.FirestoreProjectID = c.GCPProjectID
	}
	c.FirestoreCredentialsFile = getenvDefault("FIRESTORE_CREDENTIALS_FILE", c.FirestoreCredentialsFile)
	c.ProductImageBucket = getenvDefault("PRODUCT_IMAGE_BUCKET", c.ProductImageBucket)
	c.SendGridAPIKey = getenvDefault("SENDGRID_API_KEY", c.SendGridAPIKey)
	c.SendGridFrom = getenvDefault("SENDGRID_FROM", c.SendGridFrom)

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		c.CORSAllowedOrigins = splitCSV(v)
	}

	c.OTLPEndpoint = getenvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)
	c.OTELServiceName = getenvDefault("OTEL_SERVICE_NAME", c.OTELServiceName)

	var err error
	if c.AutoMigrate, err = getenvBool("AUTO_MIGRATE", c.AutoMigrate); err != nil {
		return err
	}
	if c.AccessTokenTTL, err = getenvDuration("ACCESS_TOKEN_TTL", c.AccessTokenTTL); err != nil {
		return err
	}
	if c.RefreshTokenTTL, err = getenvDuration("REFRESH_TOKEN_TTL", c.RefreshTokenTTL); err != nil {
		return err
	}
	return nil
}

// Validate はサーバ起動に必須の設定を検証します。
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" && (c.DBHost == "" || c.DBUser == "" || c.DBName == "") {
		errs = append(errs, errors.New("DATABASE_URL or DB_HOST/DB_USER/DB_NAME is required"))
	}
	if c.JWTSecret == "" && c.JWTSecretName == "" {
		errs = append(errs, errors.New("JWT_SECRET or JWT_SECRET_NAME is required"))
	}
	if c.JWTSecret == "" && c.JWTSecretName != "" && c.GCPProjectID == "" {
		errs = append(errs, errors.New("GCP_PROJECT_ID is required to read JWT_SECRET_NAME"))
	}
	switch c.CommentsBackend {
	case CommentsBackendPostgres:
	case CommentsBackendFirestore:
		if c.FirestoreProjectID == "" {
			errs = append(errs, errors.New("FIRESTORE_PROJECT_ID is required when COMMENTS_BACKEND=firestore"))
		}
	default:
		errs = append(errs, fmt.Errorf("COMMENTS_BACKEND must be %q or %q, got %q",
			CommentsBackendPostgres, CommentsBackendFirestore, c.CommentsBackend))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// DSN は lib/pq に渡す接続文字列を返します。
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   c.DBHost + ":" + c.DBPort,
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", c.DBSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
