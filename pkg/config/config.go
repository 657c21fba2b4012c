package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
	Company       CompanyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.checkProd(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const minProdJWTSecretLen = 32

// checkProd refuses settings that are only acceptable on a laptop.
func (c *Config) checkProd() error {
	if !c.App.IsProd() {
		return nil
	}
	if len(c.JWT.Secret) < minProdJWTSecretLen {
		return fmt.Errorf("%s must be at least %d characters in prod", EnvJWTSecret, minProdJWTSecretLen)
	}
	if c.DB.AutoMigrate {
		return fmt.Errorf("DEALER_AUTO_MIGRATE must be off in prod; run cmd/migrate before deploying")
	}
	return nil
}

type AppConfig struct {
	Env             string        `envconfig:"DEALER_APP_ENV" required:"true"`
	Port            string        `envconfig:"DEALER_APP_PORT" required:"true"`
	LogLevel        string        `envconfig:"DEALER_LOG_LEVEL" default:"info"`
	LogWarnStack    bool          `envconfig:"DEALER_LOG_WARN_STACK" default:"false"`
	ReadTimeout     time.Duration `envconfig:"DEALER_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"DEALER_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"DEALER_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"DEALER_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `envconfig:"DEALER_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DEALER_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DEALER_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DEALER_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DEALER_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DEALER_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DEALER_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type ServiceConfig struct {
	Kind string `envconfig:"DEALER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DEALER_DB_DSN"`
	Driver string `envconfig:"DEALER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DEALER_DB_HOST"`
	LegacyPort     int    `envconfig:"DEALER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEALER_DB_USER"`
	LegacyPassword string `envconfig:"DEALER_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEALER_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEALER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEALER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEALER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEALER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEALER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"DEALER_AUTO_MIGRATE" default:"false"`
	// SlowQuery logs statements slower than this at warn level; 0 disables it.
	SlowQuery time.Duration `envconfig:"DEALER_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DEALER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DEALER_REDIS_ADDR"`
	Password     string        `envconfig:"DEALER_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEALER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEALER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEALER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEALER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEALER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEALER_REDIS_WRITE_TIMEOUT" default:"5s"`
	Namespace    string        `envconfig:"DEALER_REDIS_NAMESPACE" default:"dealer"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DEALER_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DEALER_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DEALER_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DEALER_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DEALER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DEALER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DEALER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DEALER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DEALER_ARGON_KEY_LEN" default:"32"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"DEALER_IDEMPOTENCY_TTL" default:"24h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DEALER_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DEALER_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DEALER_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	ContractsTopic string `envconfig:"DEALER_PUBSUB_CONTRACTS_TOPIC" default:"dealer-contract-events"`
	PaymentsTopic  string `envconfig:"DEALER_PUBSUB_PAYMENTS_TOPIC" default:"dealer-payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DEALER_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DEALER_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DEALER_OUTBOX_MAX_ATTEMPTS" default:"10"`
	// Concurrency bounds in-flight Pub/Sub sends within one batch.
	Concurrency int `envconfig:"DEALER_OUTBOX_PUBLISH_CONCURRENCY" default:"8"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DEALER_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"DEALER_CRON_LOCK_TTL" default:"10m"`
	// MetricsAddr serves /metrics from the worker; empty disables it.
	MetricsAddr      string `envconfig:"DEALER_CRON_METRICS_ADDR" default:":9091"`
	RetentionDays    int    `envconfig:"DEALER_OUTBOX_RETENTION_DAYS" default:"30"`
	DLQRetentionDays int    `envconfig:"DEALER_OUTBOX_DLQ_RETENTION_DAYS" default:"90"`
}

// CompanyConfig seeds the letterhead when no stored settings exist.
type CompanyConfig struct {
	Name      string `envconfig:"DEALER_COMPANY_NAME"`
	LogoURL   string `envconfig:"DEALER_COMPANY_LOGO_URL"`
	TaxNumber string `envconfig:"DEALER_COMPANY_TAX_NUMBER"`
	Phone     string `envconfig:"DEALER_COMPANY_PHONE"`
	Email     string `envconfig:"DEALER_COMPANY_EMAIL"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
