package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	// Server
	Port               string `mapstructure:"PORT"`
	Env                string `mapstructure:"APP_ENV"` // development | production
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBSchemaPath   string `mapstructure:"DB_SCHEMA_PATH"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	// Redis (empty address disables the popularity ranking cache)
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Auth
	JWTSecret              string `mapstructure:"JWT_SECRET"`
	AccessTokenTTLMinutes  int    `mapstructure:"ACCESS_TOKEN_TTL_MINUTES"`
	RefreshTokenTTLHours   int    `mapstructure:"REFRESH_TOKEN_TTL_HOURS"`

	// Business rules
	TimeZone             string `mapstructure:"TIME_ZONE"`       // bar's local time zone
	DayCutoffHour        int    `mapstructure:"DAY_CUTOFF_HOUR"` // sales before this hour belong to the previous day
	PopularitySweepHours int    `mapstructure:"POPULARITY_SWEEP_HOURS"`
}

// Load reads configuration from environment variables (and an optional .env
// file for local development).
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "bartab_user")
	viper.SetDefault("DB_PASSWORD", "bartab_password")
	viper.SetDefault("DB_NAME", "bartab_db")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_SCHEMA_PATH", "")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("JWT_SECRET", "change-me-in-production")
	viper.SetDefault("ACCESS_TOKEN_TTL_MINUTES", 15)
	viper.SetDefault("REFRESH_TOKEN_TTL_HOURS", 168)

	viper.SetDefault("TIME_ZONE", "Europe/Berlin")
	viper.SetDefault("DAY_CUTOFF_HOUR", 8)
	viper.SetDefault("POPULARITY_SWEEP_HOURS", 24)

	// Optional .env file — does not fail if missing.
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if cfg.DayCutoffHour < 0 || cfg.DayCutoffHour > 23 {
		return nil, fmt.Errorf("DAY_CUTOFF_HOUR must be between 0 and 23, got %d", cfg.DayCutoffHour)
	}
	return cfg, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTLHours) * time.Hour
}

// PopularitySweepInterval returns how often the popularity sweep runs.
func (c *Config) PopularitySweepInterval() time.Duration {
	return time.Duration(c.PopularitySweepHours) * time.Hour
}

// Location resolves the configured bar time zone, falling back to UTC when
// the name cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
