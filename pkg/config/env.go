package config

// EnvPrefix is the envconfig prefix shared by every service binary.
const EnvPrefix = "DEALER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "DEALER_APP_ENV"
	EnvPort                   = "DEALER_APP_PORT"
	EnvLogLevel               = "DEALER_LOG_LEVEL"
	EnvDBDSN                  = "DEALER_DB_DSN"
	EnvDBHost                 = "DEALER_DB_HOST"
	EnvDBUser                 = "DEALER_DB_USER"
	EnvDBName                 = "DEALER_DB_NAME"
	EnvRedisURL               = "DEALER_REDIS_URL"
	EnvJWTSecret              = "DEALER_JWT_SECRET"
	EnvJWTIssuer              = "DEALER_JWT_ISSUER"
	EnvJWTExpMins             = "DEALER_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "DEALER_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "DEALER_GCP_PROJECT_ID"
	EnvPubSubContractsTopic   = "DEALER_PUBSUB_CONTRACTS_TOPIC"
	EnvPubSubPaymentsTopic    = "DEALER_PUBSUB_PAYMENTS_TOPIC"
	EnvCompanyName            = "DEALER_COMPANY_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
