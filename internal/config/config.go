package config

// Config holds all application configuration.
type Config struct {
	Profile  Profile        `mapstructure:"-"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Log      LogConfig      `mapstructure:"log" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port                   int `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=0"`
}

// LogConfig selects log verbosity and destination.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// Format is "text" for coloured console output or "json" for structured output.
	Format string `mapstructure:"format" validate:"required,oneof=text json"`
	// File, when set, receives a copy of every record in JSON.
	File string `mapstructure:"file"`
}

// DatabaseConfig contains datastore connection settings.
type DatabaseConfig struct {
	// URL is a postgres:// or postgresql:// connection string, or
	// sqlite:<path> (sqlite::memory: for an in-memory database).
	URL                    string `mapstructure:"url" validate:"required,dburl"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}
