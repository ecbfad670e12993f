package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix         = "TEXTWORLD"
	defaultConfigName = "textworld.yaml"
)

// Load builds configuration from defaults, an optional config file and env vars, and returns the resolved path
// Precedence: defaults < config file < env vars.
// A missing config file is created with the defaults.
func Load(logger *slog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := resolveConfigPath(explicitPath)
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			if writeErr := writeDefaultConfig(configPath, cfg); writeErr != nil {
				logger.Warn("failed to write default config",
					slog.String("path", configPath),
					slog.String("error", writeErr.Error()))
			} else {
				logger.Info("created default config", slog.String("path", configPath))
			}
		} else {
			return cfg, configPath, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, configPath, fmt.Errorf("unmarshal config: %w", err)
	}

	return cfg, configPath, nil
}

// setDefaults registers every key so env vars can override keys absent from the file
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("notify.addr", cfg.Notify.Addr)
	v.SetDefault("notify.queue_size", cfg.Notify.QueueSize)
	v.SetDefault("notify.write_timeout", cfg.Notify.WriteTimeout)
	v.SetDefault("notify.handshake_timeout", cfg.Notify.HandshakeTimeout)

	v.SetDefault("session.heartbeat_timeout", cfg.Session.HeartbeatTimeout)
	v.SetDefault("session.reap_interval", cfg.Session.ReapInterval)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.redis_url", cfg.Storage.RedisURL)
	v.SetDefault("storage.redis_prefix", cfg.Storage.RedisPrefix)

	v.SetDefault("world.path", cfg.World.Path)
	v.SetDefault("auth.algorithm", cfg.Auth.Algorithm)
	v.SetDefault("ratelimit.requests_per_second", cfg.RateLimit.RequestsPerSecond)
	v.SetDefault("ratelimit.burst", cfg.RateLimit.Burst)
	v.SetDefault("ratelimit.idle_timeout", cfg.RateLimit.IdleTimeout)
	v.SetDefault("log.level", cfg.Log.Level)
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
