package telegram

import (
	"context"
	"sync"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// SessionFactory starts a fresh conversation.
type SessionFactory func() *chat.Session

type chatSlot struct {
	mu      sync.Mutex
	session *chat.Session
}

// Registry keeps one session per chat. Turns on the same chat are serialized,
// different chats proceed in parallel.
type Registry struct {
	mu      sync.Mutex
	slots   map[string]*chatSlot
	factory SessionFactory
	search  bool
}

func NewRegistry(factory SessionFactory, search bool) *Registry {
	return &Registry{
		slots:   make(map[string]*chatSlot),
		factory: factory,
		search:  search,
	}
}

func (r *Registry) slot(key string) *chatSlot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[key]
	if !ok {
		s = &chatSlot{}
		r.slots[key] = s
	}
	return s
}

// WithSession runs fn holding the chat lock. The session is created on first use.
func (r *Registry) WithSession(key string, fn func(*chat.Session)) {
	slot := r.slot(key)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.session == nil {
		slot.session = r.factory()
	}
	fn(slot.session)
}

func (r *Registry) Reset(ctx context.Context, key string) error {
	slot := r.slot(key)
	slot.mu.Lock()
	defer slot.mu.Unlock()

	slot.session = r.factory()
	log.FromCtx(ctx).Info().
		Str("chat", key).
		Str("session", slot.session.ID()).
		Msg("session reset")
	return nil
}

func (r *Registry) Describe(key string) (core.SessionInfo, bool) {
	r.mu.Lock()
	slot, ok := r.slots[key]
	r.mu.Unlock()
	if !ok {
		return core.SessionInfo{}, false
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.session == nil {
		return core.SessionInfo{}, false
	}

	s := slot.session
	return core.SessionInfo{
		ID:       s.ID(),
		Provider: s.Provider(),
		Model:    s.Model(),
		Messages: len(s.Visible()),
		Search:   r.search,
	}, true
}
