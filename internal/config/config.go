package config

import "time"

// Config holds all application configuration.
// It is loaded once at startup and treated as immutable afterwards; components
// receive the sub-config they need through their constructors.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig contains all HTTP-server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// Env selects the logger format: "development" gets a colored text
	// handler, anything else gets JSON.
	Env string `mapstructure:"env"`
}

// DatabaseConfig contains all database-related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains token signing and credential hashing settings.
type AuthConfig struct {
	// JWTSecret signs session tokens. Must be at least 32 bytes.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetime is the validity window of issued session tokens.
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"required"`

	// HashIterations is the PBKDF2 iteration count for credential hashing.
	// Values below 10000 are rejected at load time.
	HashIterations int `mapstructure:"hash_iterations" validate:"required,gte=10000"`
}

// EventsConfig configures the optional AMQP notification sink.
// When AMQPURL is empty the server falls back to the in-memory emitter.
type EventsConfig struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string `mapstructure:"queue"`
}
