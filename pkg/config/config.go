package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "SWIFTSTORE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SWIFTSTORE_DB_DSN"
	EnvDBHost = "SWIFTSTORE_DB_HOST"
	EnvDBUser = "SWIFTSTORE_DB_USER"
	EnvDBName = "SWIFTSTORE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Delivery     DeliveryConfig
	Geocode      GeocodeConfig
	Mail         MailConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SWIFTSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"SWIFTSTORE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SWIFTSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWIFTSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SWIFTSTORE_DB_DSN"`
	Driver string `envconfig:"SWIFTSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SWIFTSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"SWIFTSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SWIFTSTORE_DB_USER"`
	LegacyPassword string `envconfig:"SWIFTSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SWIFTSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SWIFTSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SWIFTSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SWIFTSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SWIFTSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWIFTSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SWIFTSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SWIFTSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"SWIFTSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWIFTSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWIFTSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SWIFTSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SWIFTSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWIFTSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWIFTSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SWIFTSTORE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SWIFTSTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SWIFTSTORE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SWIFTSTORE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SWIFTSTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SWIFTSTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SWIFTSTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SWIFTSTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SWIFTSTORE_ARGON_KEY_LEN" default:"32"`
}

type DeliveryConfig struct {
	OTPValidity time.Duration `envconfig:"SWIFTSTORE_DELIVERY_OTP_VALIDITY" default:"10m"`
}

type GeocodeConfig struct {
	BaseURL   string        `envconfig:"SWIFTSTORE_GEOCODE_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `envconfig:"SWIFTSTORE_GEOCODE_USER_AGENT" default:"swiftstore-backend"`
	CacheSize int           `envconfig:"SWIFTSTORE_GEOCODE_CACHE_SIZE" default:"1024"`
	CacheTTL  time.Duration `envconfig:"SWIFTSTORE_GEOCODE_CACHE_TTL" default:"24h"`
}

type MailConfig struct {
	BaseURL     string `envconfig:"SWIFTSTORE_MAIL_BASE_URL" default:"https://api.sendgrid.com/v3"`
	APIKey      string `envconfig:"SWIFTSTORE_MAIL_API_KEY"`
	DefaultFrom string `envconfig:"SWIFTSTORE_MAIL_FROM_EMAIL" default:"noreply@swiftstore.example"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SWIFTSTORE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SWIFTSTORE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SWIFTSTORE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SWIFTSTORE_AUTO_MIGRATE" default:"false"`
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
