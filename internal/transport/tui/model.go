package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/ui"
)

const inputHeight = 3

type (
	stateMsg    chat.TurnState
	fragmentMsg string
	turnDoneMsg struct {
		result chat.TurnResult
		err    error
	}
)

var keys = struct {
	send   key.Binding
	expand key.Binding
	quit   key.Binding
}{
	send:   key.NewBinding(key.WithKeys("enter")),
	expand: key.NewBinding(key.WithKeys("ctrl+o")),
	quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc")),
}

// Model is the bubbletea chat screen. Turns run in a goroutine and report
// back over events.
type Model struct {
	ctx      context.Context
	chat     *chat.Orchestrator
	sessions *Sessions
	router   core.CmdRouter

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	entries   []entry
	streaming string
	state     chat.TurnState
	busy      bool
	expand    bool
	staged    *core.Attachment
	sessionID string
	events    chan tea.Msg
	width     int
}

func newModel(ctx context.Context, orchestrator *chat.Orchestrator, sessions *Sessions, router core.CmdRouter) Model {
	input := textarea.New()
	input.Placeholder = "Ask anything, /help for commands"
	input.ShowLineNumbers = false
	input.Prompt = "┃ "
	input.SetHeight(inputHeight)
	input.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	input.Focus()

	cur := sessions.Current()
	return Model{
		ctx:       ctx,
		chat:      orchestrator,
		sessions:  sessions,
		router:    router,
		viewport:  viewport.New(80, 20),
		input:     input,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.StatusStyle)),
		entries:   entriesFromHistory(cur.Visible()),
		sessionID: cur.ID(),
		events:    make(chan tea.Msg, 16),
		width:     80,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-inputHeight-2, 3)
		m.input.SetWidth(msg.Width)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.expand):
			m.expand = !m.expand
			m.refresh()
			return m, nil
		case key.Matches(msg, keys.send):
			if m.busy {
				return m, nil
			}
			text := m.input.Value()
			m.input.Reset()
			return m.submit(text)
		}

	case stateMsg:
		m.state = chat.TurnState(msg)
		return m, m.waitForEvent()

	case fragmentMsg:
		m.streaming = string(msg)
		m.refresh()
		return m, m.waitForEvent()

	case turnDoneMsg:
		m.finishTurn(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	text = strings.TrimSpace(text)
	if text == "" {
		return m, nil
	}

	switch {
	case text == "/quit" || text == "/exit":
		return m, tea.Quit
	case text == "/attach" || strings.HasPrefix(text, "/attach "):
		m.attach(strings.TrimPrefix(text, "/attach"))
		m.refresh()
		return m, nil
	}

	if out, ok := m.router.Execute(m.ctx, localSessionKey, text); ok {
		if cur := m.sessions.Current(); cur.ID() != m.sessionID {
			m.sessionID = cur.ID()
			m.entries = entriesFromHistory(cur.Visible())
			m.staged = nil
		}
		m.entries = append(m.entries, entry{kind: entryStatus, text: out})
		m.refresh()
		return m, nil
	}

	in := chat.TurnInput{Text: text, Attachment: m.staged}
	shown := text
	if m.staged != nil {
		shown = fmt.Sprintf("%s\n📎 %s", text, m.staged.Name)
	}
	m.staged = nil
	m.entries = append(m.entries, entry{kind: entryUser, text: shown})
	m.busy = true
	m.state = chat.StateIdle
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.startTurn(in))
}

func (m *Model) attach(path string) {
	att, err := loadAttachment(path)
	if err != nil {
		m.entries = append(m.entries, entry{kind: entryError, text: err.Error()})
		return
	}
	m.staged = att
	m.entries = append(m.entries, entry{
		kind: entryStatus,
		text: fmt.Sprintf("📎 %s (%s, %d bytes) will be sent with the next message", att.Name, att.MediaType, len(att.Data)),
	})
}

// startTurn runs the turn off the UI goroutine. Events arrive in order and
// turnDoneMsg is always last.
func (m Model) startTurn(in chat.TurnInput) tea.Cmd {
	ctx, events := m.ctx, m.events
	orchestrator, session := m.chat, m.sessions.Current()

	emit := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	go func() {
		result, err := orchestrator.Turn(ctx, session, in, chat.Hooks{
			OnState:    func(s chat.TurnState) { emit(stateMsg(s)) },
			OnFragment: func(buf string) { emit(fragmentMsg(buf)) },
		})
		emit(turnDoneMsg{result: result, err: err})
	}()
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) finishTurn(done turnDoneMsg) {
	m.busy = false
	m.streaming = ""
	m.state = chat.StateIdle

	if r := done.result.Retrieval; r != "" {
		m.entries = append(m.entries, entry{kind: entryStatus, text: summarizeRetrieval(r), detail: "🔎 " + r})
	}
	if done.err != nil {
		m.entries = append(m.entries, entry{kind: entryError, text: done.err.Error()})
	} else {
		m.entries = append(m.entries, entry{kind: entryAssistant, text: done.result.Reply})
		if len(done.result.Citations) > 0 {
			m.entries = append(m.entries, entry{kind: entryStatus, text: formatSources(done.result.Citations)})
		}
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.entries, m.streaming, m.expand, m.width))
	m.viewport.GotoBottom()
}

func (m Model) statusLine() string {
	if m.busy {
		label := "waiting"
		switch m.state {
		case chat.StateAwaitingRetrieval:
			label = "searching the web"
		case chat.StateAwaitingGeneration:
			label = "thinking"
			if m.streaming != "" {
				label = "writing"
			}
		}
		return m.spinner.View() + " " + ui.StatusStyle.Render(label)
	}

	hint := "enter send · alt+enter newline · /attach <path> · /help · ctrl+o details · esc quit"
	if m.staged != nil {
		hint = "📎 " + m.staged.Name + " · " + hint
	}
	return ui.StatusStyle.Render(hint)
}

func (m Model) View() string {
	return m.viewport.View() + "\n" + m.statusLine() + "\n" + m.input.View()
}
