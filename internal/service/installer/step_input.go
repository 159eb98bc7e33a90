package installer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/tuskchat/internal/config"
)

// InputStep collects one line of text. An empty answer falls back to the
// placeholder when useDefault is set.
type InputStep struct {
	input      textinput.Model
	title      string
	useDefault bool
	optional   bool
	err        error
	// prepare runs when the step becomes current
	prepare func(s *InputStep, state *InstallState)
	apply   func(state *InstallState, value string) error
	skip    func(state *InstallState) bool
}

func newInputStep(title, placeholder string, secret bool) *InputStep {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = placeholder
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &InputStep{input: ti, title: title}
}

func (s *InputStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *InputStep) Enter(state *InstallState) bool {
	if s.skip != nil && s.skip(state) {
		return false
	}
	if s.prepare != nil {
		s.prepare(s, state)
	}
	return true
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && s.useDefault {
			val = s.input.Placeholder
		}
		if val == "" && !s.optional {
			s.err = fmt.Errorf("a value is required")
			return s, cmd
		}
		if err := s.apply(state, val); err != nil {
			s.err = err
			return s, cmd
		}
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := "(press enter to confirm)"
	if s.optional {
		hint = "(optional, press enter to skip)"
	}
	view := fmt.Sprintf("Enter your %s:\n\n%s\n\n%s\n", s.title, s.input.View(), hint)
	if s.err != nil {
		view += "\n" + errorStyle.Render(s.err.Error()) + "\n"
	}
	return view
}

func providerIs(name string) func(*InstallState) bool {
	return func(state *InstallState) bool { return state.Settings.Provider != name }
}

func NewCustomURLStep() Step {
	s := newInputStep("Custom OpenAI Base URL", "https://api.example.com", false)
	s.skip = providerIs("custom")
	s.apply = func(state *InstallState, value string) error {
		state.Settings.CustomOpenAIBaseURL = value
		return nil
	}
	return s
}

func NewOllamaURLStep() Step {
	s := newInputStep("Ollama Base URL", "http://localhost:11434", false)
	s.useDefault = true
	s.skip = providerIs("ollama")
	s.apply = func(state *InstallState, value string) error {
		state.Settings.OllamaBaseURL = value
		return nil
	}
	return s
}

var keyPlaceholders = map[string]string{
	"groq":       "gsk_...",
	"gemini":     "AIza...",
	"openai":     "sk-...",
	"anthropic":  "sk-ant-...",
	"openrouter": "sk-or-v1-...",
}

// NewAPIKeyStep collects the credential of the chosen provider.
func NewAPIKeyStep() Step {
	s := newInputStep("API Key", "", true)
	s.prepare = func(s *InputStep, state *InstallState) {
		provider := state.Settings.Provider
		name, _ := config.KeyName(provider)
		s.title = name
		s.input.Placeholder = keyPlaceholders[provider]
		s.optional = provider == "ollama" || provider == "custom"
	}
	s.apply = func(state *InstallState, value string) error {
		return state.Settings.Secrets.Set(state.Settings.Provider, value)
	}
	return s
}

func NewTelegramTokenStep() Step {
	s := newInputStep("Telegram Bot Token", "123456789:ABCDEF...", true)
	s.skip = func(state *InstallState) bool { return !state.Settings.EnableTelegram }
	s.apply = func(state *InstallState, value string) error {
		state.Settings.TelegramToken = value
		return nil
	}
	return s
}

func NewTelegramOwnerStep() Step {
	s := newInputStep("Telegram User ID (Owner)", "123456789", false)
	s.skip = func(state *InstallState) bool { return !state.Settings.EnableTelegram }
	s.apply = func(state *InstallState, value string) error {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("owner id must be numeric")
		}
		state.Settings.TelegramOwnerID = id
		return nil
	}
	return s
}
