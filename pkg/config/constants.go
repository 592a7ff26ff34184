package config

// EnvPrefix is the prefix envconfig uses when scanning the environment.
const EnvPrefix = "salesdesk"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "SALESDESK_APP_ENV"
	EnvPort   = "SALESDESK_APP_PORT"

	EnvDBDSN  = "SALESDESK_DB_DSN"
	EnvDBHost = "SALESDESK_DB_HOST"
	EnvDBUser = "SALESDESK_DB_USER"
	EnvDBName = "SALESDESK_DB_NAME"

	EnvUseSQLite = "SALESDESK_USE_SQLITE"
)

// DefaultSQLiteDSN is the local database file used when the sqlite flag is
// set without an explicit DSN.
const DefaultSQLiteDSN = "file:salesdesk.db"

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
