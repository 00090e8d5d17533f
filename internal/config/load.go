package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// ANYTHINK_ prefix with underscores for nesting, e.g. ANYTHINK_AUTH_JWT_SECRET,
// and take precedence over file values.
// Returns a validated Config or an error describing what is missing.
func Load() (*Config, error) {
	// Best effort: a missing .env file is normal outside development.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.env", "production")
	v.SetDefault("auth.token_lifetime", 60*24*time.Hour)
	v.SetDefault("auth.hash_iterations", 15000)
	v.SetDefault("events.queue", "anythink.events")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ANYTHINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not make keys visible to Unmarshal unless they are
	// bound explicitly, so bind every key we consume.
	for _, key := range []string{
		"server.port", "server.log_level", "server.env",
		"database.url",
		"auth.jwt_secret", "auth.token_lifetime", "auth.hash_iterations",
		"events.amqp_url", "events.queue",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
