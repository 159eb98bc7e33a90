package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrGeneration = errors.New("generation failed")
)

type TurnState int

const (
	StateIdle TurnState = iota
	StateAwaitingRetrieval
	StateAwaitingGeneration
	StateCompleted
	StateFailed
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingRetrieval:
		return "awaiting_retrieval"
	case StateAwaitingGeneration:
		return "awaiting_generation"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("TurnState(%d)", int(s))
}

type Options struct {
	MaxResults  int
	Stream      bool
	Temperature float64
	MaxTokens   int
	// TokenBudget bounds the retrieval text, 0 keeps it whole
	TokenBudget int
}

type TurnInput struct {
	Text       string
	Attachment *core.Attachment
}

type TurnResult struct {
	Reply     string
	Citations []core.Citation
	// Retrieval is the serialized search outcome, empty when search is off
	Retrieval string
	Fragments int
}

// Hooks observe a turn while it runs. Both are optional.
type Hooks struct {
	OnState func(TurnState)
	// OnFragment receives the whole buffer generated so far
	OnFragment func(buffer string)
}

func (h Hooks) state(s TurnState) {
	if h.OnState != nil {
		h.OnState(s)
	}
}

// Orchestrator drives one request/response cycle per user input. It holds no
// per-session state; callers serialize turns on a Session.
type Orchestrator struct {
	retriever core.Retriever
	tokens    TokenCounter
	opts      Options
}

// NewOrchestrator builds an orchestrator. A nil retriever disables search and
// a nil token counter disables truncation.
func NewOrchestrator(retriever core.Retriever, tokens TokenCounter, opts Options) *Orchestrator {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	return &Orchestrator{
		retriever: retriever,
		tokens:    tokens,
		opts:      opts,
	}
}

func (o *Orchestrator) SearchEnabled() bool {
	return o.retriever != nil
}

func (o *Orchestrator) Streaming() bool {
	return o.opts.Stream
}

// Turn appends the user message, optionally retrieves web context, asks the
// session generator for a reply and appends it. On failure only the user
// message remains in history.
func (o *Orchestrator) Turn(ctx context.Context, s *Session, in TurnInput, hooks Hooks) (TurnResult, error) {
	if strings.TrimSpace(in.Text) == "" {
		return TurnResult{}, ErrEmptyInput
	}

	logger := log.FromCtx(ctx).With().Str("session", s.ID()).Logger()
	defer hooks.state(StateIdle)

	s.append(core.Message{Role: core.RoleUser, Content: in.Text})

	var result TurnResult
	var augmented string
	if o.retriever != nil {
		hooks.state(StateAwaitingRetrieval)
		result.Retrieval = o.retrieve(ctx, s, in.Text)
		augmented = Augment(in.Text, result.Retrieval)
	}

	hooks.state(StateAwaitingGeneration)
	req := core.GenerateRequest{
		Messages:    buildPayload(s.history, augmented, in.Attachment),
		Temperature: o.opts.Temperature,
		MaxTokens:   o.opts.MaxTokens,
	}
	if o.tokens != nil {
		logger.Debug().Int("prompt_tokens", countMessages(o.tokens, req.Messages)).Msg("prompt built")
	}

	resp, fragments, err := o.generate(ctx, s.generator, req, hooks.OnFragment)
	result.Fragments = fragments
	if err != nil {
		hooks.state(StateFailed)
		logger.Error().Err(err).
			Str("model", s.Model()).
			Int("fragments", fragments).
			Msg("generation failed")
		return result, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	s.append(core.Message{Role: core.RoleAssistant, Content: resp.Text})
	hooks.state(StateCompleted)

	result.Reply = resp.Text
	result.Citations = resp.Citations

	logger.Info().
		Str("model", s.Model()).
		Int("fragments", fragments).
		Int("citations", len(resp.Citations)).
		Bool("searched", o.retriever != nil).
		Msg("turn completed")
	return result, nil
}

// retrieve never fails, errors become part of the prompt text.
func (o *Orchestrator) retrieve(ctx context.Context, s *Session, query string) string {
	results, err := o.retriever.Search(ctx, query, o.opts.MaxResults)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", s.ID()).Msg("search failed")
		return formatSearchError(err)
	}
	if len(results) > o.opts.MaxResults {
		results = results[:o.opts.MaxResults]
	}

	text := FormatResults(results)
	if o.tokens != nil && o.opts.TokenBudget > 0 {
		text = o.tokens.Truncate(text, o.opts.TokenBudget)
	}
	return text
}

func (o *Orchestrator) generate(ctx context.Context, gen core.Generator, req core.GenerateRequest, onFragment func(string)) (core.GenerateResponse, int, error) {
	if !o.opts.Stream {
		resp, err := gen.Generate(ctx, req)
		return resp, 0, err
	}

	stream, err := gen.Stream(ctx, req)
	if err != nil {
		return core.GenerateResponse{}, 0, err
	}
	defer stream.Close()

	var buf strings.Builder
	fragments := 0
	for {
		fragment, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.GenerateResponse{}, fragments, err
		}
		fragments++
		buf.WriteString(fragment)
		if onFragment != nil {
			onFragment(buf.String())
		}
	}

	return core.GenerateResponse{Text: buf.String(), Citations: stream.Citations()}, fragments, nil
}
