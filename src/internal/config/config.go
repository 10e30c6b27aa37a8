package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	// Environment variables: CASRECIPES_SERVER_PORT etc.
	v.SetEnvPrefix("CASRECIPES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Load config file if exists
	for _, path := range []string{".", "./config", "/etc/casrecipes"} {
		v.AddConfigPath(path)
	}
	v.SetConfigName("config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Generate secret key if not set
	if v.GetString("security.secret_key") == "" {
		key, err := generateSecretKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate secret key: %w", err)
		}
		v.Set("security.secret_key", key)
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("app.name", "CasRecipes")
	v.SetDefault("app.version", "dev")
	v.SetDefault("environment", "development")
	v.SetDefault("debug", false)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Database defaults
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "casrecipes.db")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", 300)

	// Security defaults
	v.SetDefault("security.secret_key", "")
	v.SetDefault("security.access_token_ttl", "2h")
	v.SetDefault("security.bcrypt_cost", 10)

	// Validation limits (explicit, not ambient globals)
	v.SetDefault("limits.cooking_time_min", 1)
	v.SetDefault("limits.cooking_time_max", 500)
	v.SetDefault("limits.amount_min", 1)
	v.SetDefault("limits.amount_max", 1000)
	v.SetDefault("limits.name_max", 200)

	// Pagination defaults
	v.SetDefault("pagination.default_limit", 10)
	v.SetDefault("pagination.max_limit", 100)

	// Media storage defaults
	v.SetDefault("media.root", "./media")
	v.SetDefault("media.url_prefix", "/media")
	v.SetDefault("media.max_image_bytes", 5*1024*1024)

	// Rate limiting defaults
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests_per_second", 20)
	v.SetDefault("ratelimit.burst", 40)

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("cors.allowed_headers", "Authorization,Content-Type")
	v.SetDefault("cors.max_age", 3600)
	v.SetDefault("cors.allow_credentials", false)

	// SMTP defaults (notifications disabled unless configured)
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@localhost")
}

// generateSecretKey generates a random secret key for JWT signing
func generateSecretKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
