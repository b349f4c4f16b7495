package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvLogLevel     = "STOREFRONT_LOG_LEVEL"
	EnvLogWarnStack = "STOREFRONT_LOG_WARN_STACK"

	EnvRedisURL = "STOREFRONT_REDIS_URL"

	EnvUpstreamBaseURL   = "STOREFRONT_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout   = "STOREFRONT_UPSTREAM_TIMEOUT"
	EnvUpstreamRetries   = "STOREFRONT_UPSTREAM_RETRY_COUNT"
	EnvUpstreamRetryWait = "STOREFRONT_UPSTREAM_RETRY_WAIT"
	EnvUpstreamRPS       = "STOREFRONT_UPSTREAM_REQUESTS_PER_SECOND"

	EnvJWTSecret     = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer     = "STOREFRONT_JWT_ISSUER"
	EnvRequireVerify = "STOREFRONT_REQUIRE_VERIFIED_EMAIL"

	EnvFirestoreProjectID   = "STOREFRONT_FIRESTORE_PROJECT_ID"
	EnvFirestoreCredentials = "STOREFRONT_FIRESTORE_CREDENTIALS_JSON"
	EnvFirestoreCollection  = "STOREFRONT_FIRESTORE_WISHLIST_COLLECTION"

	EnvCatalogSnapshotTTL = "STOREFRONT_CATALOG_SNAPSHOT_TTL"
	EnvCatalogPageSize    = "STOREFRONT_CATALOG_PAGE_SIZE"
	EnvCatalogMaxPageSize = "STOREFRONT_CATALOG_MAX_PAGE_SIZE"
	EnvCatalogLocale      = "STOREFRONT_CATALOG_LOCALE"
	EnvCatalogRelated     = "STOREFRONT_CATALOG_RELATED_COUNT"
	EnvCatalogHomeSection = "STOREFRONT_CATALOG_HOME_SECTION_SIZE"

	EnvCORSOrigins = "STOREFRONT_CORS_ALLOWED_ORIGINS"

	EnvSessionIdleTTL       = "STOREFRONT_SESSION_IDLE_TTL"
	EnvSessionSweepInterval = "STOREFRONT_SESSION_SWEEP_INTERVAL"
)
