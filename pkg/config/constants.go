package config

// EnvPrefix is passed to envconfig; the per-field tags already carry the full
// COMICVAULT_ prefix so this stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "COMICVAULT_APP_ENV"
	EnvPort         = "COMICVAULT_APP_PORT"
	EnvDBDSN        = "COMICVAULT_DB_DSN"
	EnvDBHost       = "COMICVAULT_DB_HOST"
	EnvDBUser       = "COMICVAULT_DB_USER"
	EnvDBName       = "COMICVAULT_DB_NAME"
	EnvRedisURL     = "COMICVAULT_REDIS_URL"
	EnvGCPProjectID = "COMICVAULT_GCP_PROJECT_ID"
	EnvFeeRateBps   = "COMICVAULT_PAYOUTS_FEE_RATE_BPS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
