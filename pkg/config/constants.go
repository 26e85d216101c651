package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "eco"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ECO_DB_DSN"
	EnvDBHost = "ECO_DB_HOST"
	EnvDBUser = "ECO_DB_USER"
	EnvDBName = "ECO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
