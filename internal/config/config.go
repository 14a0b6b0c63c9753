package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name        string   `envconfig:"APP_NAME" default:"posrecon" validate:"required"`
		Port        int      `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
		LogLevel    string   `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
		LogFormat   string   `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
		CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
	}

	DB struct {
		Host            string        `envconfig:"DB_HOST" default:"localhost" validate:"required"`
		Port            int           `envconfig:"DB_PORT" default:"5432" validate:"min=1,max=65535"`
		User            string        `envconfig:"DB_USER" default:"postgres" validate:"required"`
		Password        string        `envconfig:"DB_PASSWORD" default:""`
		Name            string        `envconfig:"DB_NAME" default:"posrecon" validate:"required"`
		SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
		MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10" validate:"min=1"`
		MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5" validate:"min=0"`
		ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	}

	Redis struct {
		URL         string        `envconfig:"REDIS_URL"`
		Addr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required_without=URL"`
		Password    string        `envconfig:"REDIS_PASSWORD"`
		DB          int           `envconfig:"REDIS_DB" default:"0" validate:"min=0"`
		DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Sync struct {
		Enabled     bool          `envconfig:"SYNC_ENABLED" default:"true"`
		Interval    time.Duration `envconfig:"SYNC_INTERVAL" default:"5m" validate:"gt=0"`
		BatchSize   int           `envconfig:"SYNC_BATCH_SIZE" default:"500" validate:"min=1"`
		PassTimeout time.Duration `envconfig:"SYNC_PASS_TIMEOUT" default:"2m" validate:"gt=0"`
	}

	Ingest struct {
		MaxUploadBytes int64  `envconfig:"INGEST_MAX_UPLOAD_BYTES" default:"33554432" validate:"min=1"`
		MappingFile    string `envconfig:"INGEST_MAPPING_FILE"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

// SlogLevel maps LOG_LEVEL onto slog.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.App.LogLevel))); err != nil {
		return slog.LevelInfo
	}

	return level
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
