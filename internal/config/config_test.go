package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IRT-SystemX/bcm-notifier/notifier"
)

func newViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	v.SetDefault("mode", "eth")
	v.SetDefault("notifyUrl", "https://notify.example.com")
	for key, value := range values {
		v.Set(key, value)
	}
	return v
}

func TestLoad(t *testing.T) {
	cfg, err := Load(newViper(map[string]interface{}{
		"projectId": "p1",
		"appDomain": "app.example.com",
		"interval":  "3s",
		"chainId":   5,
		"port":      8000,
	}))
	require.NoError(t, err)
	assert.Equal(t, "p1", cfg.ProjectID)
	assert.Equal(t, "app.example.com", cfg.AppDomain)
	assert.Equal(t, 3*time.Second, cfg.Interval)
	assert.Equal(t, int64(5), cfg.ChainID)
	assert.Equal(t, 8000, cfg.Port)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(map[string]interface{}{"projectId": "p1", "appDomain": "d"}))
	require.NoError(t, err)
	assert.Equal(t, notifier.DefaultInterval, cfg.Interval)
	assert.Equal(t, int64(1), cfg.ChainID)
}

func TestLoadRequired(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]interface{}
		key    string
	}{
		{"project id", map[string]interface{}{"appDomain": "d"}, "PROJECT_ID"},
		{"app domain", map[string]interface{}{"projectId": "p"}, "APP_DOMAIN"},
		{"notify url", map[string]interface{}{"projectId": "p", "appDomain": "d", "notifyUrl": ""}, "notifyUrl"},
		{"mode", map[string]interface{}{"projectId": "p", "appDomain": "d", "mode": "btc"}, "mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(newViper(tt.values))
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestLoadSubscribers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "subscribers.yml")
	require.NoError(t, os.WriteFile(file, []byte("subscribers:\n  - eip155:1:0xabc\n  - \"\"\n  - eip155:1:0xdef\n"), 0o600))

	subscribers, err := LoadSubscribers(file)
	require.NoError(t, err)
	assert.Equal(t, []notifier.Recipient{"eip155:1:0xabc", "eip155:1:0xdef"}, subscribers)

	subscribers, err = LoadSubscribers(filepath.Join(dir, "missing.yml"))
	require.NoError(t, err)
	assert.Empty(t, subscribers)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("subscribers: [\n"), 0o600))
	_, err = LoadSubscribers(bad)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}
