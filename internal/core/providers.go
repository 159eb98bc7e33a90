package core

import "context"

type GenerateRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

type GenerateResponse struct {
	Text      string
	Citations []Citation
}

// FragmentStream is a finite sequence of generated text fragments.
// Next returns io.EOF once the stream is exhausted. Citations is only
// complete after Next has returned io.EOF.
type FragmentStream interface {
	Next() (string, error)
	Citations() []Citation
	Close() error
}

type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Stream(ctx context.Context, req GenerateRequest) (FragmentStream, error)
}

type Retriever interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}
