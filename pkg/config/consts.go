package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// RENTAL_-prefixed names so the prefix stays empty here.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error
// messages).
const (
	EnvAppEnv = "RENTAL_APP_ENV"
	EnvPort   = "RENTAL_APP_PORT"

	EnvDBDSN  = "RENTAL_DB_DSN"
	EnvDBHost = "RENTAL_DB_HOST"
	EnvDBUser = "RENTAL_DB_USER"
	EnvDBName = "RENTAL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
