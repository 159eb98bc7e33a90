package tui

import (
	"context"
	"sync"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const localSessionKey = "tui-local"

// Sessions holds the single conversation of the terminal surface.
type Sessions struct {
	mu      sync.Mutex
	current *chat.Session
	factory func() *chat.Session
	search  bool
}

func NewSessions(factory func() *chat.Session, search bool) *Sessions {
	return &Sessions{
		current: factory(),
		factory: factory,
		search:  search,
	}
}

func (s *Sessions) Current() *chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Sessions) Reset(ctx context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.factory()
	log.FromCtx(ctx).Info().Str("session", s.current.ID()).Msg("session reset")
	return nil
}

func (s *Sessions) Describe(_ string) (core.SessionInfo, bool) {
	cur := s.Current()
	return core.SessionInfo{
		ID:       cur.ID(),
		Provider: cur.Provider(),
		Model:    cur.Model(),
		Messages: len(cur.Visible()),
		Search:   s.search,
	}, true
}
