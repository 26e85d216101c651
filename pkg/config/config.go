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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Recovery      RecoveryConfig
	Bazaar        BazaarConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ECO_APP_ENV" required:"true"`
	Port         string `envconfig:"ECO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECO_DB_DSN"`
	Driver string `envconfig:"ECO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECO_DB_HOST"`
	LegacyPort     int    `envconfig:"ECO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECO_DB_USER"`
	LegacyPassword string `envconfig:"ECO_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECO_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ECO_REDIS_ADDR"`
	Password     string        `envconfig:"ECO_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ECO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ECO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ECO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ECO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ECO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"ECO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"ECO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"ECO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"ECO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"ECO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	RecoveryWindow     time.Duration `envconfig:"ECO_AUTH_RATE_LIMIT_RECOVERY_WINDOW" default:"15m"`
	RecoveryEmailLimit int           `envconfig:"ECO_AUTH_RATE_LIMIT_RECOVERY_EMAIL_LIMIT" default:"3"`
	RecoveryIPLimit    int           `envconfig:"ECO_AUTH_RATE_LIMIT_RECOVERY_IP_LIMIT" default:"10"`
}

type RecoveryConfig struct {
	CodeTTL time.Duration `envconfig:"ECO_RECOVERY_CODE_TTL" default:"15m"`
}

type BazaarConfig struct {
	VoucherCost int `envconfig:"ECO_BAZAAR_VOUCHER_COST" default:"50"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ECO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ECO_AUTO_MIGRATE" default:"false"`
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
