package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	label string
	value string
}

// ChoiceStep asks the user to pick one option from a short list.
type ChoiceStep struct {
	prompt  string
	choices []choice
	cursor  int
	apply   func(state *InstallState, value string)
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			s.apply(state, s.choices[s.cursor].value)
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}

func NewProviderStep() Step {
	return &ChoiceStep{
		prompt: "Select your AI Provider:",
		choices: []choice{
			{"Groq", "groq"},
			{"Gemini", "gemini"},
			{"OpenAI", "openai"},
			{"Anthropic", "anthropic"},
			{"OpenRouter", "openrouter"},
			{"Ollama", "ollama"},
			{"Custom (OpenAI compatible)", "custom"},
		},
		apply: func(state *InstallState, value string) {
			state.Settings.Provider = value
		},
	}
}

func NewSearchStep() Step {
	return &ChoiceStep{
		prompt: "Search the web before answering?",
		choices: []choice{
			{"Yes, with DuckDuckGo", "true"},
			{"No", "false"},
		},
		apply: func(state *InstallState, value string) {
			state.Settings.SearchEnabled = value
		},
	}
}

func NewChannelStep() Step {
	return &ChoiceStep{
		prompt: "Select your Chat Channel:",
		choices: []choice{
			{"Terminal (tuskchat chat)", "terminal"},
			{"Telegram (tuskchat start)", "telegram"},
		},
		apply: func(state *InstallState, value string) {
			state.Settings.EnableTelegram = value == "telegram"
		},
	}
}
