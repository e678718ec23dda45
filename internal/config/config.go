package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const defaultPollIntervalSeconds = 3

type Profile struct {
	ServerURL           string `json:"server_url"`
	SessionCookie       string `json:"session_cookie,omitempty"`
	CSRFToken           string `json:"csrf_token,omitempty"`
	PollIntervalSeconds int    `json:"poll_interval_seconds,omitempty"`
	LogLevel            string `json:"log_level,omitempty"`
	LogFile             string `json:"log_file,omitempty"`
}

type Config struct {
	Profiles       map[string]Profile `json:"profiles"`
	ActiveProfile  string             `json:"active_profile"`
	currentProfile *Profile
}

func LoadConfig() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	// Ensure config directory exists
	if err := ensureConfigDir(configPath); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	// Load existing config or create default
	config, err := loadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Validate and set current profile
	if err := config.setCurrentProfile(); err != nil {
		return nil, fmt.Errorf("failed to set current profile: %w", err)
	}

	return config, nil
}

func (c *Config) IsValid() bool {
	return c.currentProfile != nil && c.currentProfile.ServerURL != ""
}

func (c *Config) GetServerURL() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.ServerURL
}

func (c *Config) GetSessionCookie() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.SessionCookie
}

func (c *Config) GetCSRFToken() string {
	if c.currentProfile == nil {
		return ""
	}
	return c.currentProfile.CSRFToken
}

// GetPollInterval returns the status-poll cadence for the active profile.
func (c *Config) GetPollInterval() time.Duration {
	if c.currentProfile == nil || c.currentProfile.PollIntervalSeconds <= 0 {
		return defaultPollIntervalSeconds * time.Second
	}
	return time.Duration(c.currentProfile.PollIntervalSeconds) * time.Second
}

func (c *Config) GetLogLevel() string {
	if c.currentProfile == nil || c.currentProfile.LogLevel == "" {
		return "info"
	}
	return c.currentProfile.LogLevel
}

// GetLogFile returns the log destination, defaulting to a file next to the
// config so the TUI never writes to stdout.
func (c *Config) GetLogFile() string {
	if c.currentProfile != nil && c.currentProfile.LogFile != "" {
		return c.currentProfile.LogFile
	}
	configPath, err := getConfigPath()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(configPath), "stagechat.log")
}

func getConfigPath() (string, error) {
	var configDir string

	// Use STAGECHAT_HOME if set, otherwise use user's home directory
	if chatHome := os.Getenv("STAGECHAT_HOME"); chatHome != "" {
		configDir = chatHome
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = homeDir
	}

	return filepath.Join(configDir, ".stagechat", "config.json"), nil
}

func ensureConfigDir(configPath string) error {
	configDir := filepath.Dir(configPath)
	return os.MkdirAll(configDir, 0755)
}

func loadConfigFile(configPath string) (*Config, error) {
	// If config file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func createDefaultConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: map[string]Profile{
			"default": {
				ServerURL:           "",
				PollIntervalSeconds: defaultPollIntervalSeconds,
			},
		},
		ActiveProfile: "default",
	}

	if err := saveConfig(config, configPath); err != nil {
		return nil, err
	}

	return config, nil
}

func saveConfig(config *Config, configPath string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	return saveConfig(c, configPath)
}

func (c *Config) setCurrentProfile() error {
	if c.Profiles == nil {
		return fmt.Errorf("no profiles defined")
	}

	profile, exists := c.Profiles[c.ActiveProfile]
	if !exists {
		// If active profile doesn't exist, try to use the first available profile
		for name, p := range c.Profiles {
			c.ActiveProfile = name
			profile = p
			exists = true
			break
		}
	}

	if !exists {
		return fmt.Errorf("no valid profiles found")
	}

	c.currentProfile = &profile
	return nil
}
