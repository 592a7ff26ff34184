package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Sales SalesConfig
	Flags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Flags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = DefaultSQLiteDSN
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SALESDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SALESDESK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SALESDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SALESDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SALESDESK_DB_DSN"`
	Driver string `envconfig:"SALESDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SALESDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SALESDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SALESDESK_DB_USER"`
	LegacyPassword string `envconfig:"SALESDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SALESDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SALESDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SALESDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SALESDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SALESDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SALESDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// SalesConfig tunes the transactional sales posting flow.
type SalesConfig struct {
	TxMaxRetries   int           `envconfig:"SALESDESK_SALES_TX_MAX_RETRIES" default:"3"`
	TxRetryBackoff time.Duration `envconfig:"SALESDESK_SALES_TX_RETRY_BACKOFF" default:"100ms"`
}

type FeatureFlagsConfig struct {
	// UseSQLite forces the sqlite driver for local runs without a Postgres
	// instance. The DSN falls back to a local file when unset.
	UseSQLite   bool `envconfig:"SALESDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SALESDESK_AUTO_MIGRATE" default:"false"`
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
