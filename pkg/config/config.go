package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	FeatureFlags FeatureFlagsConfig
	DB           DBConfig
	Redis        RedisConfig
	Payouts      PayoutsConfig
	Cron         CronConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Square       SquareConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Payouts.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COMICVAULT_APP_ENV" required:"true"`
	Port         string `envconfig:"COMICVAULT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COMICVAULT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COMICVAULT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COMICVAULT_SERVICE_KIND" default:"api"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COMICVAULT_AUTO_MIGRATE" default:"false"`
}

type DBConfig struct {
	DSN    string `envconfig:"COMICVAULT_DB_DSN"`
	Driver string `envconfig:"COMICVAULT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COMICVAULT_DB_HOST"`
	LegacyPort     int    `envconfig:"COMICVAULT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COMICVAULT_DB_USER"`
	LegacyPassword string `envconfig:"COMICVAULT_DB_PASSWORD"`
	LegacyName     string `envconfig:"COMICVAULT_DB_NAME"`
	LegacySSLMode  string `envconfig:"COMICVAULT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COMICVAULT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COMICVAULT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COMICVAULT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COMICVAULT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COMICVAULT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COMICVAULT_REDIS_ADDR"`
	Password     string        `envconfig:"COMICVAULT_REDIS_PASSWORD"`
	DB           int           `envconfig:"COMICVAULT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COMICVAULT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COMICVAULT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COMICVAULT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COMICVAULT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COMICVAULT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PayoutsConfig carries the settlement knobs for the seller wallet engine.
type PayoutsConfig struct {
	// FeeRateBps is the marketplace fee in basis points (650 = 6.5%).
	FeeRateBps int `envconfig:"COMICVAULT_PAYOUTS_FEE_RATE_BPS" default:"650"`
}

func (p PayoutsConfig) validate() error {
	if p.FeeRateBps < 0 || p.FeeRateBps >= 10000 {
		return fmt.Errorf("payouts fee rate must be in [0, 10000) basis points, got %d", p.FeeRateBps)
	}
	return nil
}

type CronConfig struct {
	Interval time.Duration `envconfig:"COMICVAULT_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"COMICVAULT_CRON_LOCK_KEY" default:"comicvault:cron:lock"`
	LockTTL  time.Duration `envconfig:"COMICVAULT_CRON_LOCK_TTL" default:"25h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COMICVAULT_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"COMICVAULT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COMICVAULT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"COMICVAULT_PUBSUB_NOTIFICATION_TOPIC" default:"cv-notification-events"`
	NotificationSubscription string `envconfig:"COMICVAULT_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"COMICVAULT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"COMICVAULT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"COMICVAULT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type SquareConfig struct {
	AccessToken   string `envconfig:"COMICVAULT_SQUARE_ACCESS_TOKEN"`
	WebhookSecret string `envconfig:"COMICVAULT_SQUARE_WEBHOOK_SECRET"`
	Env           string `envconfig:"COMICVAULT_SQUARE_ENV" default:"sandbox"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
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
