package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "REBOOTMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "REBOOTMART_DB_DSN"
	EnvDBHost = "REBOOTMART_DB_HOST"
	EnvDBUser = "REBOOTMART_DB_USER"
	EnvDBName = "REBOOTMART_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
