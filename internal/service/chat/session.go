package chat

import (
	"slices"

	"github.com/google/uuid"

	"github.com/sandevgo/tuskchat/internal/core"
)

// Session is the in-memory state of one conversation. It is owned by a
// single caller and is not safe for concurrent turns.
type Session struct {
	id        string
	provider  string
	model     string
	generator core.Generator
	history   []core.Message
}

// NewSession starts a conversation bound to a resolved generator. A non-empty
// systemPrompt becomes the first history entry.
func NewSession(provider, model string, gen core.Generator, systemPrompt string) *Session {
	s := &Session{
		id:        uuid.NewString(),
		provider:  provider,
		model:     model,
		generator: gen,
	}
	if systemPrompt != "" {
		s.history = append(s.history, core.Message{Role: core.RoleSystem, Content: systemPrompt})
	}
	return s
}

func (s *Session) ID() string       { return s.id }
func (s *Session) Provider() string { return s.provider }
func (s *Session) Model() string    { return s.model }
func (s *Session) Len() int         { return len(s.history) }

// History returns a copy of every stored message, system prompt included.
func (s *Session) History() []core.Message {
	return slices.Clone(s.history)
}

// Visible returns the messages a surface should render.
func (s *Session) Visible() []core.Message {
	if len(s.history) > 0 && s.history[0].Role == core.RoleSystem {
		return slices.Clone(s.history[1:])
	}
	return slices.Clone(s.history)
}

func (s *Session) append(msg core.Message) {
	// attachments are per turn only
	msg.Attachment = nil
	s.history = append(s.history, msg)
}
