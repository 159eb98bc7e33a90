package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, orchestrator *chat.Orchestrator, sessions *Sessions, router core.CmdRouter) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(
		newModel(ctx, orchestrator, sessions, router),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	log.FromCtx(ctx).Info().Str("session", sessions.Current().ID()).Msg("terminal chat started")
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
