package search

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

var ErrUnknownProvider = errors.New("unknown search provider")

// Retriever is a core.Retriever owning a connection that has to be released.
type Retriever interface {
	core.Retriever
	io.Closer
}

// NewRetriever builds the configured retriever. It returns nil when search
// is disabled.
func NewRetriever(ctx context.Context, cfg *config.SearchConfig) (Retriever, error) {
	if !cfg.Enabled {
		log.FromCtx(ctx).Info().Msg("web search disabled")
		return nil, nil
	}

	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Int("max_results", cfg.MaxResults).
		Msg("starting search provider")

	switch cfg.Provider {
	case "duckduckgo":
		return NewDuckDuckGo(cfg.DuckDuckGoURL), nil
	case "mcp":
		m, err := NewMCP(ctx, cfg.MCP)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
}
