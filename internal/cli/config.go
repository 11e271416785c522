package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	Project     string
	Player      string
	SessionID   string
	SessionFile string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("INKDUEL_SERVER", "http://localhost:8080"),
		Project:     os.Getenv("INKDUEL_PROJECT"),
		Player:      os.Getenv("INKDUEL_PLAYER"),
		SessionFile: getEnvOrDefault("INKDUEL_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
		Verbose:     false,
	}
}

// LoadSession loads the heartbeat session id from file, minting and
// persisting a fresh one the first time the CLI runs
func (c *Config) LoadSession() error {
	data, err := os.ReadFile(c.SessionFile)
	if err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			c.SessionID = id
			return nil
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	c.SessionID = uuid.NewString()

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.SessionFile, []byte(c.SessionID), 0600)
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".inkduel/session"
	}
	return filepath.Join(home, ".inkduel", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
