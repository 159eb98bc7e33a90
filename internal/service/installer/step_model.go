package installer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/tuskchat/internal/providers/llm"
)

// ModelStep picks the preferred model from the provider's catalogue. The
// provider defaults stay behind it as fallback candidates.
type ModelStep struct {
	list     list.Model
	defaults []string
	loading  bool
	fetching bool
	err      error
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select AI Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{
		list:    l,
		loading: true,
	}
}

func (s *ModelStep) Init() tea.Cmd {
	return nil
}

func (s *ModelStep) Enter(state *InstallState) bool {
	s.defaults = llm.DefaultModels(state.Settings.Provider)
	return true
}

func (s *ModelStep) fetch(state *InstallState) tea.Cmd {
	settings := llm.Settings{Provider: state.Settings.Provider}
	settings.APIKey, _ = state.Settings.Secrets.APIKey(settings.Provider)
	switch settings.Provider {
	case "ollama":
		settings.BaseURL = state.Settings.OllamaBaseURL
	case "custom":
		settings.BaseURL = state.Settings.CustomOpenAIBaseURL
	}
	defaults := s.defaults

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		models, err := llm.ListModels(ctx, settings)
		if err != nil {
			return errMsg(err)
		}

		items := make([]list.Item, 0, len(models)+len(defaults))
		for _, id := range defaults {
			items = append(items, item{id: id, title: id, desc: "recommended"})
		}
		for _, m := range models {
			if slices.Contains(defaults, m.ID) {
				continue
			}
			desc := "ID: " + m.ID
			if m.ContextLength > 0 {
				desc = fmt.Sprintf("ID: %s | Context: %d", m.ID, m.ContextLength)
			}
			title := m.Name
			if title == "" {
				title = m.ID
			}
			items = append(items, item{id: m.ID, title: title, desc: desc})
		}
		return modelsMsg(items)
	}
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.loading && !s.fetching {
		s.fetching = true
		return s, s.fetch(state)
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case modelsMsg:
		s.list.SetItems(msg)
		s.loading = false
		s.fetching = false
		return s, nil

	case errMsg:
		s.loading = false
		s.fetching = false
		s.err = msg
		return s, nil

	case tea.KeyMsg:
		if s.err != nil {
			if msg.String() != "enter" {
				return s, nil
			}
			if len(s.defaults) > 0 {
				state.Settings.Models = strings.Join(s.defaults, ",")
				return nil, nil
			}
			s.err = nil
			s.loading = true
			return s, nil
		}

		if msg.String() == "enter" {
			wasFiltering := s.list.FilterState() == list.Filtering
			s.list, cmd = s.list.Update(msg)

			if wasFiltering || s.list.FilterState() == list.Filtering {
				return s, cmd
			}

			if i, ok := s.list.SelectedItem().(item); ok {
				state.Settings.Models = candidates(i.id, s.defaults)
				return nil, nil
			}
			return s, cmd
		}
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if s.err != nil {
		next := "press enter to retry"
		if len(s.defaults) > 0 {
			next = "press enter to use " + strings.Join(s.defaults, ", ")
		}
		return errorStyle.Render(fmt.Sprintf("Error fetching models: %v", s.err)) +
			fmt.Sprintf("\n\nCheck your API key and internet connection.\n\n(%s, ctrl+c to quit)\n", next)
	}
	if s.loading {
		return "Fetching models...\n"
	}
	return s.list.View()
}

// candidates puts the chosen model first, followed by the remaining defaults.
func candidates(chosen string, defaults []string) string {
	out := []string{chosen}
	for _, d := range defaults {
		if d != chosen {
			out = append(out, d)
		}
	}
	return strings.Join(out, ",")
}
