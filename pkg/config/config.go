package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"golang.org/x/text/language"
)

type Config struct {
	App        AppConfig
	Redis      RedisConfig
	Upstream   UpstreamConfig
	Auth       AuthConfig
	Firestore  FirestoreConfig
	Catalog    CatalogConfig
	Newsletter NewsletterRateLimitConfig
	Invoice    InvoiceConfig
	CORS       CORSConfig
	Sessions   SessionStateConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// validate checks cross-field constraints envconfig cannot express and reports all of them at once.
func (c *Config) validate() error {
	var err error
	if _, parseErr := url.ParseRequestURI(c.Upstream.BaseURL); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("%s: %w", EnvUpstreamBaseURL, parseErr))
	}
	if c.Upstream.RequestsPerSecond < 1 {
		err = multierr.Append(err, fmt.Errorf("%s must be at least 1", EnvUpstreamRPS))
	}
	if c.Catalog.PageSize < 1 {
		err = multierr.Append(err, fmt.Errorf("%s must be at least 1", EnvCatalogPageSize))
	}
	if c.Catalog.MaxPageSize < c.Catalog.PageSize {
		err = multierr.Append(err, fmt.Errorf("%s must not be smaller than %s", EnvCatalogMaxPageSize, EnvCatalogPageSize))
	}
	if _, parseErr := language.Parse(c.Catalog.Locale); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("%s: %w", EnvCatalogLocale, parseErr))
	}
	if c.Catalog.SnapshotTTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvCatalogSnapshotTTL))
	}
	if c.Sessions.IdleTTL <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvSessionIdleTTL))
	}
	if c.Sessions.SweepInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("%s must be positive", EnvSessionSweepInterval))
	}
	return err
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// UpstreamConfig describes the commerce REST API the storefront fronts.
type UpstreamConfig struct {
	BaseURL           string        `envconfig:"STOREFRONT_UPSTREAM_BASE_URL" required:"true"`
	Timeout           time.Duration `envconfig:"STOREFRONT_UPSTREAM_TIMEOUT" default:"10s"`
	RetryCount        int           `envconfig:"STOREFRONT_UPSTREAM_RETRY_COUNT" default:"2"`
	RetryWait         time.Duration `envconfig:"STOREFRONT_UPSTREAM_RETRY_WAIT" default:"250ms"`
	RequestsPerSecond int           `envconfig:"STOREFRONT_UPSTREAM_REQUESTS_PER_SECOND" default:"50"`
	UserAgent         string        `envconfig:"STOREFRONT_UPSTREAM_USER_AGENT" default:"kbeauty-storefront/1.0"`
}

type AuthConfig struct {
	JWTSecret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	JWTIssuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	RequireVerifiedEmail bool   `envconfig:"STOREFRONT_REQUIRE_VERIFIED_EMAIL" default:"true"`
}

type FirestoreConfig struct {
	ProjectID          string `envconfig:"STOREFRONT_FIRESTORE_PROJECT_ID" required:"true"`
	CredentialsJSON    string `envconfig:"STOREFRONT_FIRESTORE_CREDENTIALS_JSON"`
	CredentialsFile    string `envconfig:"STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"`
	WishlistCollection string `envconfig:"STOREFRONT_FIRESTORE_WISHLIST_COLLECTION" default:"wishlists"`
}

type CatalogConfig struct {
	SnapshotTTL     time.Duration `envconfig:"STOREFRONT_CATALOG_SNAPSHOT_TTL" default:"5m"`
	PageSize        int           `envconfig:"STOREFRONT_CATALOG_PAGE_SIZE" default:"25"`
	MaxPageSize     int           `envconfig:"STOREFRONT_CATALOG_MAX_PAGE_SIZE" default:"100"`
	Locale          string        `envconfig:"STOREFRONT_CATALOG_LOCALE" default:"en"`
	RelatedCount    int           `envconfig:"STOREFRONT_CATALOG_RELATED_COUNT" default:"4"`
	HomeSectionSize int           `envconfig:"STOREFRONT_CATALOG_HOME_SECTION_SIZE" default:"8"`
}

type NewsletterRateLimitConfig struct {
	Window     time.Duration `envconfig:"STOREFRONT_NEWSLETTER_RATE_LIMIT_WINDOW" default:"10m"`
	IPLimit    int           `envconfig:"STOREFRONT_NEWSLETTER_RATE_LIMIT_IP_LIMIT" default:"10"`
	EmailLimit int           `envconfig:"STOREFRONT_NEWSLETTER_RATE_LIMIT_EMAIL_LIMIT" default:"3"`
}

type InvoiceConfig struct {
	CompanyName  string `envconfig:"STOREFRONT_INVOICE_COMPANY_NAME" default:"K-Beauty Store"`
	ContactEmail string `envconfig:"STOREFRONT_INVOICE_CONTACT_EMAIL" default:"support@kbeauty.example"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// SessionStateConfig bounds how long per-user cart and wishlist state stays in memory.
type SessionStateConfig struct {
	IdleTTL       time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"STOREFRONT_SESSION_SWEEP_INTERVAL" default:"1m"`
}
