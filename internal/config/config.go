package config

import "time"

// Config holds all application configuration, grouped by concern.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Log      LogConfig      `mapstructure:"log"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Events   EventsConfig   `mapstructure:"events"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// Timezone decides which calendar day a session is attributed to in reports.
	Timezone string `mapstructure:"timezone" validate:"required,timezone"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url" validate:"required,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains token and password hashing settings.
type AuthConfig struct {
	JWTSecret            string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetime        time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
	RefreshTokenLifetime time.Duration `mapstructure:"refresh_token_lifetime" validate:"gtfield=TokenLifetime"`
	BCryptCost           int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// LogConfig controls the optional rotating log file.
type LogConfig struct {
	// File is the path of the rotating log file; empty logs to stdout only.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// CacheConfig selects the report cache backend.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend" validate:"oneof=memory redis none"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
	RedisURL string        `mapstructure:"redis_url" validate:"required_if=Backend redis"`
}

// EventsConfig controls forwarding of session events to NATS JetStream.
type EventsConfig struct {
	// NATSURL enables forwarding when set.
	NATSURL string `mapstructure:"nats_url"`
	Stream  string `mapstructure:"stream" validate:"required"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure    bool   `mapstructure:"insecure"`
	ServiceName string `mapstructure:"service_name" validate:"required"`
}
