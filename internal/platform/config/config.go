package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env             string        `env:"APP_ENV" envDefault:"dev"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":3000"`
	CorsOrigin      string        `env:"CORS_ORIGIN" envDefault:"*"`
	SessionSecret   string        `env:"SESSION_SECRET" envDefault:"change-me"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"12h"`
	RequireSession  bool          `env:"REQUIRE_SESSION" envDefault:"false"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"20s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"20s"`
	MaxRequestBody  int64         `env:"MAX_REQUEST_BODY_BYTES" envDefault:"1048576"`

	DatabaseURL     string        `env:"DATABASE_URL" envDefault:"postgres://rf:rf@localhost:5432/rf?sslmode=disable"`
	DBMaxConns      int32         `env:"DB_MAX_CONNS" envDefault:"20"`
	DBMaxConnIdle   time.Duration `env:"DB_MAX_CONN_IDLE" envDefault:"30s"`
	BootstrapSchema bool          `env:"BOOTSTRAP_SCHEMA" envDefault:"false"`

	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	ItemCacheTTL  time.Duration `env:"ITEM_CACHE_TTL" envDefault:"1h"`

	NATSURL string `env:"NATS_URL" envDefault:"nats://localhost:4222"`

	PromoPremiumWindow time.Duration `env:"PROMO_PREMIUM_WINDOW" envDefault:"72h"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be > 0")
	}
	if c.PromoPremiumWindow < 0 {
		return fmt.Errorf("PROMO_PREMIUM_WINDOW must not be negative")
	}
	return nil
}
