package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

type fakeGenerator struct {
	reply     string
	citations []core.Citation
	fragments []string
	// streamErr is returned after all fragments were sent
	streamErr error
	err       error
	requests  []core.GenerateRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req core.GenerateRequest) (core.GenerateResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return core.GenerateResponse{}, f.err
	}
	return core.GenerateResponse{Text: f.reply, Citations: f.citations}, nil
}

func (f *fakeGenerator) Stream(_ context.Context, req core.GenerateRequest) (core.FragmentStream, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeStream{fragments: f.fragments, err: f.streamErr, citations: f.citations}, nil
}

func (f *fakeGenerator) lastRequest() core.GenerateRequest {
	return f.requests[len(f.requests)-1]
}

type fakeStream struct {
	fragments []string
	err       error
	citations []core.Citation
	closed    bool
}

func (s *fakeStream) Next() (string, error) {
	if len(s.fragments) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	f := s.fragments[0]
	s.fragments = s.fragments[1:]
	return f, nil
}

func (s *fakeStream) Citations() []core.Citation { return s.citations }

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeRetriever struct {
	results []core.SearchResult
	err     error
	queries []string
	max     int
}

func (f *fakeRetriever) Search(_ context.Context, query string, maxResults int) ([]core.SearchResult, error) {
	f.queries = append(f.queries, query)
	f.max = maxResults
	return f.results, f.err
}

// wordCounter treats every whitespace separated word as one token.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func (wordCounter) Truncate(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ")
}

var errUpstream = errors.New("upstream unavailable")
