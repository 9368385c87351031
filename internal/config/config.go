package config

import "time"

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Backend is "redis" or "memory".
	Backend       string `mapstructure:"backend" yaml:"backend"`
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
}

// PreviewConfig configures the link-preview render pipeline.
type PreviewConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Command is the renderer binary; Args are its leading arguments. The
	// URL and output path are appended per task.
	Command    string   `mapstructure:"command" yaml:"command"`
	Args       []string `mapstructure:"args" yaml:"args"`
	SandboxDir string   `mapstructure:"sandbox_dir" yaml:"sandbox_dir"`
}

// Config holds server configuration values.
type Config struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	// LogFormat is "console" or "json".
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	// ServerNick is the nickname system messages are attributed to.
	ServerNick string `mapstructure:"server_nick" yaml:"server_nick"`
	// URLRoot is the externally visible base URL, with trailing slash.
	// Preview follow-ups link screenshots under it.
	URLRoot string `mapstructure:"url_root" yaml:"url_root"`
	// NATSURL enables the outbound event mirror when non-empty.
	NATSURL string `mapstructure:"nats_url" yaml:"nats_url"`

	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		LogLevel:          "info",
		LogFormat:         "console",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		ServerNick:        "[server]",
		URLRoot:           "http://localhost:8080/",
		Store: StoreConfig{
			Backend:   "redis",
			RedisAddr: "localhost:6379",
		},
		Preview: PreviewConfig{
			Enabled:    false,
			Command:    "phantomjs",
			Args:       []string{"screenshot.js"},
			SandboxDir: "public/sandbox",
		},
	}
}
