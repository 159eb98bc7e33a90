package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig_Defaults(t *testing.T) {
	t.Setenv("TUSK_RUNTIME_PATH", t.TempDir())

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.Provider)
	assert.Empty(t, cfg.Models)
	assert.True(t, cfg.ProbeModels)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.0001)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.True(t, cfg.Stream)
	assert.False(t, cfg.EnableTelegram)
}

func TestLoadAppConfig_ModelsAndProvider(t *testing.T) {
	t.Setenv("TUSK_RUNTIME_PATH", t.TempDir())
	t.Setenv("TUSK_PROVIDER", " Gemini ")
	t.Setenv("TUSK_MODELS", "gemini-2.0-flash, ,gemini-1.5-pro")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-pro"}, cfg.Models)

	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "g-key", key)
}

func TestLoadAppConfig_NegativeMaxTokens(t *testing.T) {
	t.Setenv("TUSK_RUNTIME_PATH", t.TempDir())
	t.Setenv("TUSK_MAX_TOKENS", "-1")

	_, err := LoadAppConfig()
	assert.Error(t, err)
}

func TestLoadAppConfig_RelativeRuntimePath(t *testing.T) {
	t.Setenv("TUSK_RUNTIME_PATH", "relative-dir")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.RuntimePath))
	assert.Equal(t, "relative-dir", filepath.Base(cfg.RuntimePath))
}

func TestAppConfig_LoadSystemPrompt(t *testing.T) {
	dir := t.TempDir()

	t.Run("fallback", func(t *testing.T) {
		cfg := AppConfig{RuntimePath: dir}
		assert.Equal(t, "default", cfg.LoadSystemPrompt("default"))
	})

	t.Run("file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "SYSTEM.md"), []byte("  from file\n"), 0644))
		cfg := AppConfig{RuntimePath: dir}
		assert.Equal(t, "from file", cfg.LoadSystemPrompt("default"))
	})

	t.Run("env wins", func(t *testing.T) {
		cfg := AppConfig{RuntimePath: dir, SystemPrompt: "from env"}
		assert.Equal(t, "from env", cfg.LoadSystemPrompt("default"))
	})
}
