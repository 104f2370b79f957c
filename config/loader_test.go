package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "NPC", cfg.Presenter.NPCSpeaker)
	assert.False(t, cfg.Augment.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Augment.Timeout)
}

func TestLoader_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
augment:
  enabled: true
  api_key: file-key
  model: test-model
  timeout: 3s
presenter:
  npc_speaker: Merchant
`), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Augment.Enabled)
	assert.Equal(t, "file-key", cfg.Augment.APIKey)
	assert.Equal(t, "test-model", cfg.Augment.Model)
	assert.Equal(t, 3*time.Second, cfg.Augment.Timeout)
	assert.Equal(t, "Merchant", cfg.Presenter.NPCSpeaker)
	// Untouched sections keep their defaults.
	assert.Equal(t, 120, cfg.Augment.MaxTokens)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
augment:
  api_key: file-key
`), 0o644))

	t.Setenv("NPCFLOW_AUGMENT_API_KEY", "env-key")
	t.Setenv("NPCFLOW_AUGMENT_ENABLED", "true")
	t.Setenv("NPCFLOW_AUGMENT_TIMEOUT", "7s")
	t.Setenv("NPCFLOW_AUGMENT_MAX_TOKENS", "64")
	t.Setenv("NPCFLOW_AUGMENT_TEMPERATURE", "0.3")
	t.Setenv("NPCFLOW_LOG_OUTPUT_PATHS", "stdout, stderr")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Augment.APIKey)
	assert.True(t, cfg.Augment.Enabled)
	assert.Equal(t, 7*time.Second, cfg.Augment.Timeout)
	assert.Equal(t, 64, cfg.Augment.MaxTokens)
	assert.InDelta(t, 0.3, float64(cfg.Augment.Temperature), 1e-6)
	assert.Equal(t, []string{"stdout", "stderr"}, cfg.Log.OutputPaths)
}

func TestLoader_EnvPrefix(t *testing.T) {
	t.Setenv("CUSTOM_LOG_LEVEL", "warn")
	cfg, err := NewLoader().WithEnvPrefix("CUSTOM").Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("NPCFLOW_AUGMENT_MAX_TOKENS", "not-a-number")
	_, err := NewLoader().Load()
	require.Error(t, err)
}

func TestLoader_Validator(t *testing.T) {
	_, err := NewLoader().WithValidator(func(c *Config) error {
		return assert.AnError
	}).Load()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"temperature too high", func(c *Config) { c.Augment.Temperature = 3 }},
		{"zero max tokens", func(c *Config) { c.Augment.MaxTokens = 0 }},
		{"zero timeout", func(c *Config) { c.Augment.Timeout = 0 }},
		{"empty npc speaker", func(c *Config) { c.Presenter.NPCSpeaker = "" }},
		{"watch without interval", func(c *Config) { c.Content.Watch = true; c.Content.PollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
