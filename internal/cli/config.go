package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	NotifyAddr string
	Player     string
	PlayerFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("TEXTWORLD_SERVER", "http://localhost:8080"),
		NotifyAddr: getEnvOrDefault("TEXTWORLD_NOTIFY", "localhost:8081"),
		Player:     os.Getenv("TEXTWORLD_PLAYER"),
		PlayerFile: getEnvOrDefault("TEXTWORLD_PLAYER_FILE", defaultPlayerFile()),
		Output:     "text",
		Verbose:    false,
	}
}

// LoadPlayer loads the player name from file if not already set
func (c *Config) LoadPlayer() error {
	if c.Player != "" {
		return nil
	}

	data, err := os.ReadFile(c.PlayerFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // not joined yet
		}
		return err
	}

	c.Player = strings.TrimSpace(string(data))
	return nil
}

// SavePlayer remembers the joined player for later commands
func (c *Config) SavePlayer(name string) error {
	c.Player = name

	dir := filepath.Dir(c.PlayerFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.PlayerFile, []byte(name), 0600)
}

// ClearPlayer forgets the joined player
func (c *Config) ClearPlayer() error {
	c.Player = ""
	if err := os.Remove(c.PlayerFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RequirePlayer returns the current player or a usage error
func (c *Config) RequirePlayer() (string, error) {
	if c.Player == "" {
		return "", usageErrorf("no player: run join or create first, or pass --player")
	}
	return c.Player, nil
}

func defaultPlayerFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".textworld/player"
	}
	return filepath.Join(home, ".textworld", "player")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
