package core

import "context"

type CmdRouter interface {
	Execute(ctx context.Context, sessionKey, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionKey string, args []string) (string, error)
}

// SessionInfo describes a live chat session for display purposes.
type SessionInfo struct {
	ID       string
	Provider string
	Model    string
	Messages int
	Search   bool
}

// SessionManager is implemented by surfaces that own chat sessions.
type SessionManager interface {
	Reset(ctx context.Context, sessionKey string) error
	Describe(sessionKey string) (SessionInfo, bool)
}
