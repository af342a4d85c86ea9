// Package config collects the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/env"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/mail"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Cache     CacheConfig
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Stripe    StripeConfig
	Clerk     ClerkConfig
	Auth      AuthConfig
	Counter   CounterConfig
	Mail      mail.Config
}

type AppConfig struct {
	Env            string
	Host           string
	Port           string
	URL            string
	MonitorUser    string
	MonitorPass    string
	RateLimitMax   int
	RateLimitEvery time.Duration
}

type DBConfig struct {
	Driver   string
	Path     string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN returns the go-sql-driver/mysql data source name.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type CacheConfig struct {
	Host     string
	Port     string
	Password string
}

func (c CacheConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type ProviderConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

func (p ProviderConfig) Enabled() bool {
	return strings.TrimSpace(p.APIKey) != ""
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	ProPriceID    string
}

type ClerkConfig struct {
	WebhookSecret string
}

type AuthConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
}

type CounterConfig struct {
	FlushInterval time.Duration
}

// Load reads the configuration. SetupEnvFile must have run first when a
// .env file is expected.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:            env.GetEnv("APP_ENV", "prod"),
			Host:           env.GetEnv("APP_HOST", "localhost"),
			Port:           env.GetEnv("APP_PORT", "4000"),
			URL:            strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:3000"), "/"),
			MonitorUser:    env.GetEnv("MONITOR_USER", "admin"),
			MonitorPass:    env.GetEnv("MONITOR_PASSWORD", ""),
			RateLimitMax:   env.GetInt("RATE_LIMIT_MAX", 30),
			RateLimitEvery: env.GetDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		DB: DBConfig{
			Driver:   env.GetEnv("DB_DRIVER", "mysql"),
			Path:     env.GetEnv("DB_PATH", "gentest.db"),
			User:     env.GetEnv("DB_USER", "gentest"),
			Password: env.GetEnv("DB_PASSWORD", ""),
			Host:     env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:     env.GetEnv("DB_PORT", "3306"),
			Name:     env.GetEnv("DB_NAME", "gentest"),
		},
		Cache: CacheConfig{
			Host:     env.GetEnv("CACHE_HOST", "localhost"),
			Port:     env.GetEnv("CACHE_PORT", "6379"),
			Password: env.GetEnv("CACHE_PASSWORD", ""),
		},
		OpenAI: ProviderConfig{
			APIKey:  env.GetEnv("OPENAI_API_KEY", ""),
			BaseURL: env.GetEnv("OPENAI_BASE_URL", ""),
			Timeout: env.GetDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Anthropic: ProviderConfig{
			APIKey:  env.GetEnv("ANTHROPIC_API_KEY", ""),
			BaseURL: env.GetEnv("ANTHROPIC_BASE_URL", ""),
			Timeout: env.GetDuration("ANTHROPIC_TIMEOUT", 60*time.Second),
		},
		Stripe: StripeConfig{
			SecretKey:     env.GetEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
			ProPriceID:    env.GetEnv("STRIPE_PRO_PRICE_ID", ""),
		},
		Clerk: ClerkConfig{
			WebhookSecret: env.GetEnv("CLERK_WEBHOOK_SECRET", ""),
		},
		Auth: AuthConfig{
			Issuer:   env.GetEnv("AUTH_ISSUER", ""),
			Audience: env.GetEnv("AUTH_AUDIENCE", ""),
			JWKSURL:  env.GetEnv("AUTH_JWKS_URL", ""),
		},
		Counter: CounterConfig{
			FlushInterval: env.GetDuration("USAGE_FLUSH_INTERVAL", time.Minute),
		},
		Mail: mail.Config{
			Host:     env.GetEnv("SMTP_HOST", ""),
			Port:     env.GetEnv("SMTP_PORT", "587"),
			Username: env.GetEnv("SMTP_USERNAME", ""),
			Password: env.GetEnv("SMTP_PASSWORD", ""),
			Sender:   env.GetEnv("SMTP_SENDER", ""),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if !c.OpenAI.Enabled() && !c.Anthropic.Enabled() {
		errs = append(errs, errors.New("at least one of OPENAI_API_KEY or ANTHROPIC_API_KEY must be set"))
	}
	if c.Stripe.WebhookSecret == "" {
		errs = append(errs, errors.New("STRIPE_WEBHOOK_SECRET must be set"))
	}
	if c.Clerk.WebhookSecret == "" {
		errs = append(errs, errors.New("CLERK_WEBHOOK_SECRET must be set"))
	}
	if c.Auth.Issuer == "" {
		errs = append(errs, errors.New("AUTH_ISSUER must be set"))
	}
	if c.DB.Driver != "mysql" && c.DB.Driver != "sqlite" {
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}
	if c.App.RateLimitMax <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	return errors.Join(errs...)
}
