package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Config holds application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBConn   string `env:"DB_CONN" envDefault:"host=localhost port=5432 user=test password=test dbname=tasks sslmode=disable"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// JWTSecretFile is read from the path held in JWT_SECRET_FILE (mounted secret).
	JWTSecret        string        `env:"JWT_SECRET"`
	JWTSecretFile    string        `env:"JWT_SECRET_FILE,file"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"0s"`
	BcryptCost       int           `env:"BCRYPT_COST" envDefault:"10"`
	EnforceOwnership bool          `env:"ENFORCE_OWNERSHIP" envDefault:"true"`
	CORSOrigin       string        `env:"CORS_ORIGIN" envDefault:"*"`

	RedisAddr      string  `env:"REDIS_ADDR"`
	RedisPassword  string  `env:"REDIS_PASSWORD"`
	RateLimitRate  float64 `env:"RATE_LIMIT_RATE" envDefault:"1"`
	RateLimitBurst float64 `env:"RATE_LIMIT_BURST" envDefault:"5"`
	// TrustedProxies are IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	SMTPHost             string   `env:"SMTP_HOST"`
	SMTPPort             string   `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername         string   `env:"SMTP_USERNAME"`
	SMTPPassword         string   `env:"SMTP_PASSWORD"`
	SenderEmail          string   `env:"SENDER_EMAIL" envDefault:"tasks@localhost"`
	ReminderTo           []string `env:"REMINDER_TO" envSeparator:","`
	ReminderCron         string   `env:"REMINDER_CRON" envDefault:"0 8 * * *"`
	ReminderSkipStatuses []string `env:"REMINDER_SKIP_STATUSES" envSeparator:"," envDefault:"done,completed"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", cfg.DBDriver)
	}
	if cfg.Secret() == "" {
		return nil, fmt.Errorf("JWT_SECRET or JWT_SECRET_FILE is required")
	}
	if cfg.TokenTTL < 0 {
		return nil, fmt.Errorf("TOKEN_TTL must not be negative")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}

	return cfg, nil
}

// Secret returns the token signing secret, preferring the mounted file
func (c *Config) Secret() string {
	if s := strings.TrimSpace(c.JWTSecretFile); s != "" {
		return s
	}
	return c.JWTSecret
}

// Level parses LOG_LEVEL, falling back to info
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// RemindersEnabled reports whether the due-task digest has somewhere to go
func (c *Config) RemindersEnabled() bool {
	return c.SMTPHost != "" && len(c.ReminderTo) > 0
}
