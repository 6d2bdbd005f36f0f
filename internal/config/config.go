package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port           string        `env:"PORT,default=8080"`
	Env            string        `env:"ENV,default=development"`
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTIssuer      string        `env:"JWT_ISSUER,default=ventech-api"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY,default=24h"`
	AdminSignupKey string        `env:"ADMIN_SIGNUP_KEY"`
	AllowedHosts   []string      `env:"CORS_ALLOWED_HOSTS,default=localhost:3000,127.0.0.1:3000,ventech.id,www.ventech.id,admin.ventech.id"`

	DB        DatabaseConfig  `env:",prefix=DB_"`
	Redis     RedisConfig     `env:",prefix=REDIS_"`
	Cache     CacheConfig     `env:",prefix=CACHE_"`
	Worker    WorkerConfig    `env:",prefix=WORKER_"`
	Store     StoreConfig     `env:",prefix=STORE_"`
	S3        S3Config        `env:",prefix=S3_"`
	SMTP      SMTPConfig      `env:",prefix=SMTP_"`
	RateLimit RateLimitConfig `env:",prefix=RATE_LIMIT_"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `env:"HOST"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME"`
	SSLMode  string `env:"SSLMODE,default=disable"`
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string `env:"HOST,default=redis"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB,default=0"`
}

// CacheConfig controls the resolved-deal cache.
type CacheConfig struct {
	FlashDealTTL time.Duration `env:"FLASH_DEAL_TTL,default=2m"`
	DealsTTL     time.Duration `env:"DEALS_TTL,default=1m"`
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	DealExpiryInterval time.Duration `env:"DEAL_EXPIRY_INTERVAL,default=1m"`
	FlashWarmInterval  time.Duration `env:"FLASH_WARM_INTERVAL,default=90s"`
}

// StoreConfig holds storefront presentation defaults.
type StoreConfig struct {
	Name             string `env:"NAME,default=VENTECH"`
	PlaceholderImage string `env:"PLACEHOLDER_IMAGE,default=/placeholder.svg"`
	Currency         string `env:"CURRENCY,default=USD"`
}

// S3Config contains invoice object storage configuration. An empty Bucket
// disables uploads.
type S3Config struct {
	Region          string `env:"REGION,default=ap-southeast-1"`
	Bucket          string `env:"BUCKET"`
	Endpoint        string `env:"ENDPOINT"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
}

// SMTPConfig contains outgoing mail settings. An empty Host disables email.
type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT,default=587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM,default=VENTECH <no-reply@ventech.id>"`
}

// RateLimitConfig bounds public write endpoints per client IP.
type RateLimitConfig struct {
	InvoicePerMinute int `env:"INVOICE_PER_MINUTE,default=6"`
	AuthFailures     int `env:"AUTH_FAILURES_PER_MINUTE,default=5"`
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load(ctx context.Context) (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set for authentication")
	}
	if c.Cache.FlashDealTTL < 0 || c.Cache.DealsTTL < 0 {
		return errors.New("cache TTLs must be >= 0")
	}
	if c.Worker.DealExpiryInterval <= 0 || c.Worker.FlashWarmInterval <= 0 {
		return errors.New("worker intervals must be > 0")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the PostgreSQL connection URL.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode)
}

// Addr returns host:port for the Redis server.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
