package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

const maxListedModels = 30

type ModelLister func(ctx context.Context) ([]core.Model, error)

type ModelCommand struct {
	sessions  core.SessionManager
	lister    ModelLister
	formatter *ResponseFormatter
}

func NewModelCommand(sessions core.SessionManager, lister ModelLister) *ModelCommand {
	return &ModelCommand{
		sessions:  sessions,
		lister:    lister,
		formatter: NewResponseFormatter(),
	}
}

func (c *ModelCommand) Name() string {
	return "model"
}

func (c *ModelCommand) Description() string {
	return "Show the selected model, /model list shows available ones"
}

func (c *ModelCommand) Execute(ctx context.Context, sessionKey string, args []string) (string, error) {
	if len(args) > 0 && args[0] == "list" {
		return c.list(ctx)
	}

	info, ok := c.sessions.Describe(sessionKey)
	if !ok {
		return c.formatter.Combine(
			c.formatter.Info("Current Model"),
			c.formatter.Label("Status", "No active session"),
			c.formatter.Tip("Send a message to start one"),
		), nil
	}

	search := "off"
	if info.Search {
		search = "on"
	}
	return c.formatter.Combine(
		c.formatter.Info("Current Model"),
		c.formatter.Label("Provider", info.Provider),
		c.formatter.Label("Model", info.Model),
		c.formatter.Label("Web search", search),
		c.formatter.Label("Messages", fmt.Sprint(info.Messages)),
		c.formatter.Tip("Models are chosen at startup from TUSK_MODELS"),
	), nil
}

func (c *ModelCommand) list(ctx context.Context) (string, error) {
	if c.lister == nil {
		return "", fmt.Errorf("this provider cannot list models")
	}

	models, err := c.lister(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}
	if len(models) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Available Models"),
			c.formatter.Label("Status", "No models reported"),
		), nil
	}

	items := make([]string, 0, min(len(models), maxListedModels))
	for _, m := range models {
		if len(items) == maxListedModels {
			break
		}
		items = append(items, fmt.Sprintf("`%s`", m.ID))
	}

	sections := []string{c.formatter.Info("Available Models"), c.formatter.List(items)}
	if rest := len(models) - len(items); rest > 0 {
		sections = append(sections, c.formatter.Tip(fmt.Sprintf("%d more not shown", rest)))
	}
	return strings.TrimSpace(c.formatter.Combine(sections...)), nil
}
