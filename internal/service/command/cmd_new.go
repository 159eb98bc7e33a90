package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskchat/internal/core"
)

type NewCommand struct {
	sessions  core.SessionManager
	formatter *ResponseFormatter
}

func NewNewCommand(sessions core.SessionManager) *NewCommand {
	return &NewCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *NewCommand) Name() string {
	return "new"
}

func (c *NewCommand) Description() string {
	return "Start a fresh conversation"
}

func (c *NewCommand) Execute(ctx context.Context, sessionKey string, args []string) (string, error) {
	if err := c.sessions.Reset(ctx, sessionKey); err != nil {
		return "", fmt.Errorf("failed to reset session: %w", err)
	}
	return c.formatter.Success("New conversation started"), nil
}
