package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Session is the persisted state of the current room membership
type Session struct {
	RoomCode     string `json:"room_code"`
	ConnectionID string `json:"connection_id"`
	PlayerID     string `json:"player_id,omitempty"`
}

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	SessionFile string
	Output      string
	Session     Session
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("HINTRUSH_SERVER", "http://localhost:8080"),
		SessionFile: getEnvOrDefault("HINTRUSH_SESSION_FILE", defaultSessionFile()),
		Output:      "text",
	}
}

// LoadSession loads the stored session if one exists
func (c *Config) LoadSession() error {
	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No session file is fine
		}
		return err
	}

	return json.Unmarshal(data, &c.Session)
}

// SaveSession persists the session to the session file
func (c *Config) SaveSession(s Session) error {
	c.Session = s

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.SessionFile, data, 0600)
}

// ClearSession removes the stored session
func (c *Config) ClearSession() error {
	c.Session = Session{}
	err := os.Remove(c.SessionFile)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hintrush/session.json"
	}
	return filepath.Join(home, ".hintrush", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
