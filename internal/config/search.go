package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type SearchConfig struct {
	Enabled    bool   `env:"TUSK_SEARCH_ENABLED" envDefault:"true"`
	Provider   string `env:"TUSK_SEARCH_PROVIDER" envDefault:"duckduckgo"`
	MaxResults int    `env:"TUSK_SEARCH_MAX_RESULTS" envDefault:"3"`

	// Token budget for the serialized results, 0 disables truncation
	TokenBudget int    `env:"TUSK_SEARCH_TOKEN_BUDGET" envDefault:"1024"`
	Encoding    string `env:"TUSK_TOKEN_ENCODING" envDefault:"cl100k_base"`

	DuckDuckGoURL string `env:"TUSK_DUCKDUCKGO_URL" envDefault:"https://html.duckduckgo.com/html/"`

	MCP MCPSearchConfig `envPrefix:"TUSK_SEARCH_MCP_"`
}

// MCPSearchConfig points at an MCP server exposing a web search tool.
type MCPSearchConfig struct {
	Command  string            `env:"COMMAND"`
	Args     []string          `env:"ARGS" envSeparator:" "`
	Env      map[string]string `env:"ENV"`
	URL      string            `env:"URL"`
	Headers  map[string]string `env:"HEADERS"`
	Tool     string            `env:"TOOL" envDefault:"web_search"`
	QueryArg string            `env:"QUERY_ARG" envDefault:"query"`
	CountArg string            `env:"COUNT_ARG" envDefault:"count"`
}

func LoadSearchConfig() (*SearchConfig, error) {
	c := &SearchConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 3
	}
	return c, nil
}

func NewSearchConfig(ctx context.Context) *SearchConfig {
	c, err := LoadSearchConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Search config")
	}
	return c
}
