package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver      = errors.New("unknown database driver")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required for postgres")
	ErrInvalidSlugLimit   = errors.New("SLUG_MAX_ATTEMPTS must be positive")
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr         string   `env:"LISTEN_ADDR"`
	Port               string   `env:"PORT" envDefault:"8080"`
	DatabaseDriver     string   `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabasePath       string   `env:"DATABASE_PATH" envDefault:"wheelhub.db"`
	DatabaseURL        string   `env:"DATABASE_URL"`
	SessionSecret      string   `env:"SESSION_SECRET" envDefault:"wheelhub-dev-secret"`
	GinMode            string   `env:"GIN_MODE" envDefault:"release"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins        []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	SlugMaxAttempts    int      `env:"SLUG_MAX_ATTEMPTS" envDefault:"1000"`
	PaymentCheckoutURL string   `env:"PAYMENT_CHECKOUT_URL" envDefault:"/payment/checkout"`
	SiteBaseURL        string   `env:"SITE_BASE_URL" envDefault:"http://localhost:8080"`
	SuperRootUserName  string   `env:"SUPER_ROOT_USER_NAME"`
	SuperRootPassword  string   `env:"SUPER_ROOT_PASSWORD"`

	// 0 关闭限流
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads an optional .env file, then the environment, and fills in
// derived defaults.
func Load() (AppConfig, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}

	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	if c.DatabaseDriver == "" {
		c.DatabaseDriver = DriverSQLite
	}
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	if c.DatabasePath == "" {
		c.DatabasePath = "wheelhub.db"
	}
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.SuperRootUserName = strings.TrimSpace(c.SuperRootUserName)
	c.SuperRootPassword = strings.TrimSpace(c.SuperRootPassword)

	origins := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.CORSOrigins = origins

	if c.RateLimitWindow <= 0 {
		c.RateLimitWindow = time.Minute
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 1
	}
}

// Validate checks combinations env parsing cannot express.
func (c AppConfig) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.DatabaseDriver)
	}

	if c.SlugMaxAttempts <= 0 {
		return ErrInvalidSlugLimit
	}
	return nil
}
