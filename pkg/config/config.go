package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TILLPOINT"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "TILLPOINT_APP_ENV"
	EnvPort   = "TILLPOINT_APP_PORT"
	EnvDBPath = "TILLPOINT_DB_PATH"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
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
	Env          string `envconfig:"TILLPOINT_APP_ENV" required:"true"`
	Port         string `envconfig:"TILLPOINT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TILLPOINT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TILLPOINT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN  string `envconfig:"TILLPOINT_DB_DSN"`
	Path string `envconfig:"TILLPOINT_DB_PATH" default:"tillpoint.db"`

	BusyTimeout     time.Duration `envconfig:"TILLPOINT_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns    int           `envconfig:"TILLPOINT_DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `envconfig:"TILLPOINT_DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `envconfig:"TILLPOINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TILLPOINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"TILLPOINT_AUTO_MIGRATE" default:"false"`
	SeedSampleData bool `envconfig:"TILLPOINT_SEED_SAMPLE_DATA" default:"false"`
}

// ensureDSN derives a SQLite file DSN from the configured path. Foreign keys
// are enforced so sale_items rows cannot outlive their sale.
func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.TrimSpace(db.Path) == "" {
		return fmt.Errorf("either %s or %s is required", "TILLPOINT_DB_DSN", EnvDBPath)
	}

	q := url.Values{}
	q.Set("_fk", "1")
	if db.BusyTimeout > 0 {
		q.Set("_busy_timeout", fmt.Sprintf("%d", db.BusyTimeout.Milliseconds()))
	}

	db.DSN = fmt.Sprintf("file:%s?%s", db.Path, q.Encode())
	return nil
}
