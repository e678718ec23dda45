package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	t.Setenv("STAGECHAT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "default", cfg.ActiveProfile)
	require.False(t, cfg.IsValid(), "default profile has no server URL yet")
	require.Equal(t, 3*time.Second, cfg.GetPollInterval())

	configPath := filepath.Join(os.Getenv("STAGECHAT_HOME"), ".stagechat", "config.json")
	_, err = os.Stat(configPath)
	require.NoError(t, err, "default config must be written to disk")
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("STAGECHAT_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.Profiles["staging"] = Profile{
		ServerURL:           "https://chat.example.com",
		SessionCookie:       "abc",
		CSRFToken:           "def",
		PollIntervalSeconds: 5,
	}
	cfg.ActiveProfile = "staging"
	require.NoError(t, cfg.Save())

	reloaded, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, reloaded.IsValid())
	require.Equal(t, "https://chat.example.com", reloaded.GetServerURL())
	require.Equal(t, "abc", reloaded.GetSessionCookie())
	require.Equal(t, "def", reloaded.GetCSRFToken())
	require.Equal(t, 5*time.Second, reloaded.GetPollInterval())
}

func TestActiveProfileFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("STAGECHAT_HOME", home)

	dir := filepath.Join(home, ".stagechat")
	require.NoError(t, os.MkdirAll(dir, 0755))
	data := `{"profiles":{"only":{"server_url":"http://localhost:8000"}},"active_profile":"missing"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(data), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "only", cfg.ActiveProfile)
	require.Equal(t, "http://localhost:8000", cfg.GetServerURL())
}

func TestGetLogFile_DefaultsNextToConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("STAGECHAT_HOME", home)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".stagechat", "stagechat.log"), cfg.GetLogFile())
}
