// Package config loads server settings from defaults, an optional YAML file and
// TEXTWORLD_* environment variables
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pixil98/go-errors"

	"github.com/mcoot/textworld/internal/api"
	"github.com/mcoot/textworld/internal/factory"
	"github.com/mcoot/textworld/internal/middleware"
	"github.com/mcoot/textworld/internal/services/game"
	"github.com/mcoot/textworld/internal/services/hasher"
	"github.com/mcoot/textworld/internal/services/notify"
	redisstorage "github.com/mcoot/textworld/internal/storage/redis"
)

// Config is the full server configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Notify    NotifyConfig    `mapstructure:"notify" yaml:"notify"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	World     WorldConfig     `mapstructure:"world" yaml:"world"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// ServerConfig configures the command API
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// NotifyConfig configures the push listener and its channels
type NotifyConfig struct {
	Addr             string        `mapstructure:"addr" yaml:"addr"`
	QueueSize        int           `mapstructure:"queue_size" yaml:"queue_size"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
}

// SessionConfig configures liveness checking
type SessionConfig struct {
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat_timeout" yaml:"heartbeat_timeout"`
	ReapInterval     time.Duration `mapstructure:"reap_interval" yaml:"reap_interval"`
}

// StorageConfig selects and configures the account backend
type StorageConfig struct {
	Type        string `mapstructure:"type" yaml:"type"`
	Path        string `mapstructure:"path" yaml:"path"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	RedisURL    string `mapstructure:"redis_url" yaml:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

// WorldConfig points at the world file; empty uses the built-in world
type WorldConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig picks the password digest
type AuthConfig struct {
	Algorithm string `mapstructure:"algorithm" yaml:"algorithm"`
}

// RateLimitConfig bounds API calls per client address
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
	// IdleTimeout is how long an address may go quiet before its bucket is dropped
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
}

// LogConfig sets the log level
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	server := api.DefaultServerConfig()
	channel := notify.DefaultChannelConfig()
	listener := notify.DefaultListenerConfig()
	session := game.DefaultConfig()

	return Config{
		Server: ServerConfig{
			Host:            server.Host,
			Port:            server.Port,
			ReadTimeout:     server.ReadTimeout,
			WriteTimeout:    server.WriteTimeout,
			ShutdownTimeout: server.ShutdownTimeout,
		},
		Notify: NotifyConfig{
			Addr:             listener.Addr,
			QueueSize:        channel.QueueSize,
			WriteTimeout:     channel.WriteTimeout,
			HandshakeTimeout: listener.HandshakeTimeout,
		},
		Session: SessionConfig{
			HeartbeatTimeout: session.HeartbeatTimeout,
			ReapInterval:     session.ReapInterval,
		},
		Storage: StorageConfig{
			Type:        factory.StorageTypeFilesystem,
			Path:        "accounts",
			SQLitePath:  "accounts.db",
			RedisURL:    redisstorage.DefaultConfig().URL,
			RedisPrefix: redisstorage.DefaultConfig().KeyPrefix,
		},
		Auth: AuthConfig{
			Algorithm: hasher.AlgorithmSHA256,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			IdleTimeout:       middleware.DefaultIdleTimeout,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate reports every problem with the configuration at once
func (c Config) Validate() error {
	el := errors.NewErrorList()

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		el.Add(fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Notify.Addr == "" {
		el.Add(fmt.Errorf("notify.addr is required"))
	}
	if c.Notify.QueueSize <= 0 {
		el.Add(fmt.Errorf("notify.queue_size must be positive"))
	}
	if c.Session.HeartbeatTimeout <= 0 {
		el.Add(fmt.Errorf("session.heartbeat_timeout must be positive"))
	}
	if c.Session.ReapInterval <= 0 {
		el.Add(fmt.Errorf("session.reap_interval must be positive"))
	}

	switch c.Storage.Type {
	case factory.StorageTypeMemory:
	case factory.StorageTypeFilesystem:
		if c.Storage.Path == "" {
			el.Add(fmt.Errorf("storage.path is required for filesystem storage"))
		}
	case factory.StorageTypeSQLite:
		if c.Storage.SQLitePath == "" {
			el.Add(fmt.Errorf("storage.sqlite_path is required for sqlite storage"))
		}
	case factory.StorageTypeRedis:
		if c.Storage.RedisURL == "" {
			el.Add(fmt.Errorf("storage.redis_url is required for redis storage"))
		}
	default:
		el.Add(fmt.Errorf("storage.type %q is not one of memory, filesystem, sqlite, redis", c.Storage.Type))
	}

	if _, err := hasher.New(c.Auth.Algorithm); err != nil {
		el.Add(fmt.Errorf("auth.algorithm: %w", err))
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		el.Add(fmt.Errorf("ratelimit.requests_per_second must not be negative"))
	}
	if c.RateLimit.IdleTimeout < 0 {
		el.Add(fmt.Errorf("ratelimit.idle_timeout must not be negative"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		el.Add(err)
	}

	return el.Err()
}

// ParseLevel maps a level name onto a slog level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}

// APIServer returns the HTTP server settings
func (c Config) APIServer() api.ServerConfig {
	return api.ServerConfig{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

// Listener returns the push listener settings
func (c Config) Listener() notify.ListenerConfig {
	return notify.ListenerConfig{
		Addr:             c.Notify.Addr,
		HandshakeTimeout: c.Notify.HandshakeTimeout,
	}
}

// Limits returns the API rate limit settings
func (c Config) Limits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		RequestsPerSecond: c.RateLimit.RequestsPerSecond,
		Burst:             c.RateLimit.Burst,
		IdleTimeout:       c.RateLimit.IdleTimeout,
	}
}

// App returns the factory settings
func (c Config) App(logger *slog.Logger) factory.Config {
	cfg := factory.Config{
		StorageType:    c.Storage.Type,
		FilesystemPath: c.Storage.Path,
		SQLitePath:     c.Storage.SQLitePath,
		WorldPath:      c.World.Path,
		HashAlgorithm:  c.Auth.Algorithm,
		Game: game.Config{
			HeartbeatTimeout: c.Session.HeartbeatTimeout,
			ReapInterval:     c.Session.ReapInterval,
			Channel: notify.ChannelConfig{
				QueueSize:    c.Notify.QueueSize,
				WriteTimeout: c.Notify.WriteTimeout,
			},
		},
		Logger: logger,
	}
	if c.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.Storage.RedisURL
		if c.Storage.RedisPrefix != "" {
			redisCfg.KeyPrefix = c.Storage.RedisPrefix
		}
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}
