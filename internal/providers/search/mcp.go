package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcptransport "github.com/mark3labs/mcp-go/client/transport"
	mcpproto "github.com/mark3labs/mcp-go/mcp"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const defaultToolTimeout = 30 * time.Second

type toolCaller interface {
	CallTool(ctx context.Context, request mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error)
	Close() error
}

// MCP delegates web search to a tool exposed by an MCP server.
type MCP struct {
	client   toolCaller
	tool     string
	queryArg string
	countArg string
	timeout  time.Duration
}

func NewMCP(ctx context.Context, cfg config.MCPSearchConfig) (*MCP, error) {
	var (
		cli *client.Client
		err error
	)
	switch {
	case cfg.Command != "":
		cli, err = connectStdio(ctx, cfg)
	case cfg.URL != "":
		cli, err = connectHTTP(ctx, cfg)
	default:
		return nil, fmt.Errorf("mcp search needs TUSK_SEARCH_MCP_COMMAND or TUSK_SEARCH_MCP_URL")
	}
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Info().Str("tool", cfg.Tool).Msg("mcp search connected")
	return newMCPWithClient(cli, cfg), nil
}

func newMCPWithClient(cli toolCaller, cfg config.MCPSearchConfig) *MCP {
	return &MCP{
		client:   cli,
		tool:     cfg.Tool,
		queryArg: cfg.QueryArg,
		countArg: cfg.CountArg,
		timeout:  defaultToolTimeout,
	}
}

func (m *MCP) Search(ctx context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	req := mcpproto.CallToolRequest{}
	req.Params.Name = m.tool
	args := map[string]any{m.queryArg: query}
	if m.countArg != "" && maxResults > 0 {
		args[m.countArg] = maxResults
	}
	req.Params.Arguments = args

	tCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	res, err := m.client.CallTool(tCtx, req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", m.tool, err)
	}

	var output strings.Builder
	for _, content := range res.Content {
		if text, ok := content.(mcpproto.TextContent); ok {
			output.WriteString(text.Text + "\n")
		} else if textPtr, ok := content.(*mcpproto.TextContent); ok {
			output.WriteString(textPtr.Text + "\n")
		}
	}

	if res.IsError {
		return nil, fmt.Errorf("tool execution failed: %s", strings.TrimSpace(output.String()))
	}

	return decodeToolOutput(m.tool, output.String(), maxResults), nil
}

func (m *MCP) Close() error {
	return m.client.Close()
}

type toolResult struct {
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Body        string `json:"body"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Href        string `json:"href"`
}

func (r toolResult) result() core.SearchResult {
	return core.SearchResult{
		Title:   r.Title,
		Snippet: firstNonEmpty(r.Snippet, r.Description, r.Content, r.Body),
		Source:  firstNonEmpty(r.Source, r.URL, r.Link, r.Href),
	}
}

// decodeToolOutput accepts a JSON array of results, an object with a results
// array, or falls back to a single result holding the raw text.
func decodeToolOutput(tool, output string, maxResults int) []core.SearchResult {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil
	}

	var list []toolResult
	if err := json.Unmarshal([]byte(output), &list); err != nil {
		var wrapped struct {
			Results []toolResult `json:"results"`
		}
		if err := json.Unmarshal([]byte(output), &wrapped); err != nil || wrapped.Results == nil {
			return []core.SearchResult{{Title: tool, Snippet: output, Source: "mcp:" + tool}}
		}
		list = wrapped.Results
	}

	results := make([]core.SearchResult, 0, len(list))
	for _, r := range list {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}
		results = append(results, r.result())
	}
	return results
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func connectStdio(ctx context.Context, cfg config.MCPSearchConfig) (*client.Client, error) {
	var env []string
	for k, v := range cfg.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	cli, err := client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return initialize(ctx, cli)
}

func connectHTTP(ctx context.Context, cfg config.MCPSearchConfig) (*client.Client, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	cli, err := client.NewStreamableHttpClient(
		cfg.URL,
		mcptransport.WithHTTPHeaders(cfg.Headers),
		mcptransport.WithHTTPBasicClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http transport: %w", err)
	}
	return initialize(ctx, cli)
}

func initialize(ctx context.Context, cli *client.Client) (*client.Client, error) {
	if err := cli.Start(ctx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to start client: %w", err)
	}

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.Capabilities = mcpproto.ClientCapabilities{}
	req.Params.ClientInfo = mcpproto.Implementation{
		Name:    core.TuskName,
		Version: core.TuskVersion,
	}

	if _, err := cli.Initialize(ctx, req); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	return cli, nil
}
