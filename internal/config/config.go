package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseDriver string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`
	HTTPAddr       string        `mapstructure:"HTTP_ADDR"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogDevelopment bool          `mapstructure:"LOG_DEVELOPMENT"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
}

var AppConfig *Config

// Defaults returns a Config populated with the values used when nothing is set.
func Defaults() *Config {
	return &Config{
		DatabaseDriver: "postgres",
		TokenTTL:       7 * 24 * time.Hour,
		HTTPAddr:       ":8080",
		LogLevel:       "info",
		RateLimitRPS:   5,
		RateLimitBurst: 10,
	}
}

// LoadConfig loads the configuration from a .env file and environment variables
// and stores it in AppConfig.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	d := Defaults()
	v.SetDefault("DATABASE_DRIVER", d.DatabaseDriver)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", d.TokenTTL)
	v.SetDefault("HTTP_ADDR", d.HTTPAddr)
	v.SetDefault("LOG_LEVEL", d.LogLevel)
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("RATE_LIMIT_RPS", d.RateLimitRPS)
	v.SetDefault("RATE_LIMIT_BURST", d.RateLimitBurst)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
