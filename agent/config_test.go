package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigurationDefaults(t *testing.T) {
	cfg, err := LoadConfiguration("")
	require.NoError(t, err)

	assert.Equal(t, "qwen3:4b", cfg.Run.Model)
	assert.Equal(t, 40, cfg.Run.RecursionLimit)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Run.ModelEndpoint)
	assert.Equal(t, "https://google.serper.dev/search", cfg.Search.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "8123", cfg.Server.Port)
}

func TestLoadConfigurationFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
run:
  model: llama3.1:8b
  temperature: 0.2
  recursion_limit: 12
  request_timeout: 90s
search:
  requests_per_sec: 1
`), 0o600))

	t.Setenv("RESEARCH_RUN_MODEL", "gemma3:4b")
	t.Setenv("SERPER_API_KEY", "serper-key")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfiguration(path)
	require.NoError(t, err)

	assert.Equal(t, "gemma3:4b", cfg.Run.Model)
	assert.InDelta(t, 0.2, cfg.Run.Temperature, 1e-9)
	assert.Equal(t, 12, cfg.Run.RecursionLimit)
	assert.Equal(t, 90*time.Second, cfg.Run.RequestTimeout)
	assert.InDelta(t, 1.0, cfg.Search.RequestsPerSec, 1e-9)
	assert.Equal(t, "serper-key", cfg.Search.APIKey)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRunConfigValidate(t *testing.T) {
	cfg := NewConfiguration().Run
	require.NoError(t, cfg.Validate())

	cfg.RecursionLimit = 0
	cfg.Temperature = 3
	cfg.Model = ""
	err := cfg.Validate()
	assert.ErrorContains(t, err, "recursion_limit")
	assert.ErrorContains(t, err, "temperature")
	assert.ErrorContains(t, err, "run.model is required")
}
