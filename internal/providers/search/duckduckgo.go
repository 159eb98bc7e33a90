package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/inbucket/html2text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sandevgo/tuskchat/internal/core"
)

const (
	maxResponseSize      = 2 << 20
	defaultSearchTimeout = 15 * time.Second
)

// DuckDuckGo scrapes the javascript free HTML endpoint.
type DuckDuckGo struct {
	client   *http.Client
	endpoint string
}

func NewDuckDuckGo(endpoint string) *DuckDuckGo {
	return &DuckDuckGo{
		client:   &http.Client{Timeout: defaultSearchTimeout},
		endpoint: endpoint,
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("kl", "wt-wt")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", core.TuskUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query duckduckgo: %w", err)
	}
	defer resp.Body.Close()

	// 202 is how the endpoint answers when it rate limits
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned HTTP %d", resp.StatusCode)
	}

	return parseDuckDuckGo(io.LimitReader(resp.Body, maxResponseSize), maxResults)
}

func (d *DuckDuckGo) Close() error {
	return nil
}

func parseDuckDuckGo(r io.Reader, maxResults int) ([]core.SearchResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var results []core.SearchResult
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if !hasClass(n, "result--ad") {
				if res, ok := parseResult(n); ok {
					results = append(results, res)
				}
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !walk(c) {
				return false
			}
		}
		return true
	}
	walk(doc)

	return results, nil
}

func parseResult(n *html.Node) (core.SearchResult, bool) {
	link := findByClass(n, "result__a")
	if link == nil {
		return core.SearchResult{}, false
	}

	res := core.SearchResult{
		Title:  nodeText(link),
		Source: unwrapRedirect(attr(link, "href")),
	}
	if snippet := findByClass(n, "result__snippet"); snippet != nil {
		res.Snippet = nodeText(snippet)
	}
	if res.Title == "" || res.Source == "" {
		return core.SearchResult{}, false
	}
	return res, true
}

// unwrapRedirect resolves //duckduckgo.com/l/?uddg=<target> links.
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// nodeText renders the children of n as plain text.
func nodeText(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, unwrapInline(c))
	}

	text, err := html2text.FromString(buf.String(), html2text.Options{OmitLinks: true})
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// unwrapInline returns a copy of n with emphasis tags replaced by their text,
// so highlighted query terms come out unadorned.
func unwrapInline(n *html.Node) *html.Node {
	if n.Type == html.TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Data}
	}

	out := &html.Node{Type: html.TextNode}
	if n.Type != html.ElementNode {
		return out
	}
	switch n.DataAtom {
	case atom.B, atom.Strong, atom.Em, atom.I, atom.Span:
		out.Data = collectText(n)
		return out
	}

	clone := &html.Node{Type: n.Type, Data: n.Data, DataAtom: n.DataAtom, Attr: n.Attr}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(unwrapInline(c))
	}
	return clone
}

func collectText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(collectText(c))
	}
	return sb.String()
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
