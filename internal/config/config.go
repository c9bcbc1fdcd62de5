package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
}

// AuthConfig contains all authentication settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// RealtimeConfig controls the websocket broadcast channel.
type RealtimeConfig struct {
	// RequireAuth makes the websocket upgrade demand a valid access token.
	RequireAuth bool `mapstructure:"require_auth"`

	// SendBuffer is the per-session outbound queue length. Messages for a
	// session whose queue is full are dropped.
	SendBuffer int `mapstructure:"send_buffer" validate:"gt=0"`

	// AllowedOrigins lists the Origin header values accepted on upgrade.
	// Empty means same-origin only; "*" accepts any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuditConfig controls how action log entries are written.
type AuditConfig struct {
	Async       bool `mapstructure:"async"`
	QueueSize   int  `mapstructure:"queue_size"   validate:"gt=0"`
	WorkerCount int  `mapstructure:"worker_count" validate:"gt=0"`
}
