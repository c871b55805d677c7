package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	JWTSecret         string
	TokenTTL          time.Duration
	ReferenceCacheTTL time.Duration
	ExcludedPrefixes  []string
	MetadataMaxBytes  int
	ArchiveAfterDays  int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PROAGENT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ProAgent Activity API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("reference.cache_ttl", "12h")
	v.SetDefault("activity.excluded_prefixes", []string{
		"/static/",
		"/media/",
		"/favicon.ico",
		"/ajax/",
		"/metrics",
		"/api/v1/health",
		"/api/v1/auth/",
		"/api/admin/",
	})
	v.SetDefault("activity.metadata_max_bytes", 8192)
	v.SetDefault("archive.after_days", 30)

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("reference.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid reference cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		TokenTTL:          tokenTTL,
		ReferenceCacheTTL: cacheTTL,
		ExcludedPrefixes:  v.GetStringSlice("activity.excluded_prefixes"),
		MetadataMaxBytes:  v.GetInt("activity.metadata_max_bytes"),
		ArchiveAfterDays:  v.GetInt("archive.after_days"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MetadataMaxBytes <= 0 {
		cfg.MetadataMaxBytes = 8192
	}

	if cfg.ArchiveAfterDays <= 0 {
		cfg.ArchiveAfterDays = 30
	}

	return cfg, nil
}
