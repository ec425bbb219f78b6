package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultAppName     = "Cartera"
	defaultAppEnv      = "development"
	defaultPort        = "3001"
	defaultLogLevel    = "info"
	defaultFrontendURL = "http://localhost:5173"
	defaultStripeAPI   = "https://api.stripe.com"

	defaultShutdownPeriod  = 10 * time.Second
	defaultWebhookDedupTTL = 24 * time.Hour
)

// Config captures the runtime configuration of the gateway, loaded from the
// environment (optionally seeded by a .env file).
type Config struct {
	AppName     string `mapstructure:"APP_NAME"`
	AppEnv      string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SIGNING_SECRET"`
	StripeAPIBaseURL    string `mapstructure:"STRIPE_API_BASE_URL"`

	SupabaseJWTSecret string `mapstructure:"SUPABASE_JWT_SECRET"`

	ShutdownPeriod  time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	WebhookDedupTTL time.Duration `mapstructure:"WEBHOOK_DEDUP_TTL"`
}

// Load reads configuration from the environment. Missing processor or
// database credentials are fatal; the JWT secret is checked by the caller
// because its absence only degrades authenticated routes.
func Load() (Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_NAME", defaultAppName)
	v.SetDefault("APP_ENV", defaultAppEnv)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("LOG_LEVEL", defaultLogLevel)
	v.SetDefault("FRONTEND_URL", defaultFrontendURL)
	v.SetDefault("STRIPE_API_BASE_URL", defaultStripeAPI)
	v.SetDefault("SHUTDOWN_TIMEOUT", defaultShutdownPeriod)
	v.SetDefault("WEBHOOK_DEDUP_TTL", defaultWebhookDedupTTL)

	// Bind explicitly so container environments are picked up reliably.
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "PORT", "LOG_LEVEL", "FRONTEND_URL",
		"DATABASE_URL", "REDIS_URL",
		"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SIGNING_SECRET", "STRIPE_API_BASE_URL",
		"SUPABASE_JWT_SECRET", "SHUTDOWN_TIMEOUT", "WEBHOOK_DEDUP_TTL",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY must be set")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDevelopment reports whether the gateway runs in a development
// environment, where error responses include internal detail.
func (c Config) IsDevelopment() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
