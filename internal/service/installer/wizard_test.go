package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/config"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func typeText(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

func TestProviderStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewProviderStep()

	next, _ := step.Update(keyDown, state, 80, 24)
	require.NotNil(t, next)
	next, _ = next.Update(keyEnter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, "gemini", state.Settings.Provider)
}

func TestAPIKeyStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.Settings.Provider = "gemini"

	step := NewAPIKeyStep()
	require.True(t, step.(enterer).Enter(state))
	assert.Contains(t, step.View(state), "GEMINI_API_KEY")

	step, _ = step.Update(keyEnter, state, 80, 24)
	require.NotNil(t, step, "empty key is rejected")
	assert.Contains(t, step.View(state), "a value is required")

	step, _ = step.Update(typeText("AIza-test"), state, 80, 24)
	next, _ := step.Update(keyEnter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, "AIza-test", state.Settings.Secrets.GeminiAPIKey)
}

func TestTelegramOwnerStep(t *testing.T) {
	state := NewInstallState(t.TempDir())
	step := NewTelegramOwnerStep()
	assert.False(t, step.(enterer).Enter(state))

	state.Settings.EnableTelegram = true
	require.True(t, step.(enterer).Enter(state))

	step, _ = step.Update(typeText("abc"), state, 80, 24)
	step, _ = step.Update(keyEnter, state, 80, 24)
	require.NotNil(t, step)
	assert.Contains(t, step.View(state), "owner id must be numeric")
}

func TestOllamaURLStepUsesDefault(t *testing.T) {
	state := NewInstallState(t.TempDir())
	state.Settings.Provider = "ollama"

	step := NewOllamaURLStep()
	require.True(t, step.(enterer).Enter(state))
	next, _ := step.Update(keyEnter, state, 80, 24)
	assert.Nil(t, next)
	assert.Equal(t, "http://localhost:11434", state.Settings.OllamaBaseURL)

	assert.False(t, NewOllamaURLStep().(enterer).Enter(&InstallState{Settings: Settings{Provider: "groq"}}))
}

func TestWizardSkipsTelegramForTerminal(t *testing.T) {
	m := initialModel(t.TempDir())
	channel := -1
	for i, s := range m.steps {
		if c, ok := s.(*ChoiceStep); ok && c.prompt == "Select your Chat Channel:" {
			channel = i
		}
	}
	require.NotEqual(t, -1, channel)
	m.currentStep = channel

	updated, _ := m.Update(keyEnter)
	m = updated.(model)

	_, isSave := m.steps[m.currentStep].(*SaveEnvStep)
	assert.True(t, isSave)
	assert.False(t, m.state.Settings.EnableTelegram)
}

func TestCandidates(t *testing.T) {
	defaults := []string{"gemini-2.0-flash", "gemini-1.5-flash"}
	assert.Equal(t, "gemini-1.5-pro,gemini-2.0-flash,gemini-1.5-flash", candidates("gemini-1.5-pro", defaults))
	assert.Equal(t, "gemini-1.5-flash,gemini-2.0-flash", candidates("gemini-1.5-flash", defaults))
}

func TestSaveEnv(t *testing.T) {
	dir := t.TempDir()
	state := NewInstallState(dir)
	state.Settings = Settings{
		Provider:        "groq",
		Models:          "llama-3.3-70b-versatile",
		SearchEnabled:   "false",
		EnableTelegram:  true,
		TelegramToken:   "123:abc",
		TelegramOwnerID: 42,
	}
	require.NoError(t, state.Settings.Secrets.Set("groq", "gsk_test"))

	require.NoError(t, SaveEnv(state))

	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"TUSK_PROVIDER":          "groq",
		"TUSK_MODELS":            "llama-3.3-70b-versatile",
		"GROQ_API_KEY":           "gsk_test",
		"TUSK_SEARCH_ENABLED":    "false",
		"TUSK_ENABLE_TELEGRAM":   "true",
		"TUSK_TELEGRAM_TOKEN":    "123:abc",
		"TUSK_TELEGRAM_OWNER_ID": "42",
	}, vars)

	system, err := os.ReadFile(filepath.Join(dir, "SYSTEM.md"))
	require.NoError(t, err)
	assert.Contains(t, string(system), "deep-thinking")

	err = SaveEnv(state)
	assert.ErrorContains(t, err, "already exists")

	cfg := config.Secrets{GroqAPIKey: vars["GROQ_API_KEY"]}
	key, err := cfg.APIKey("groq")
	require.NoError(t, err)
	assert.Equal(t, "gsk_test", key)
}
