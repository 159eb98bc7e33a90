package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const probeMaxTokens = 8

// Resolved is the outcome of model selection. It does not change for the
// lifetime of a session.
type Resolved struct {
	Provider  string
	Model     string
	Generator core.Generator
}

// CandidateError records why one candidate model was rejected.
type CandidateError struct {
	Model string
	Err   error
}

// ResolveError is returned when no candidate model is usable.
type ResolveError struct {
	Provider   string
	Candidates []CandidateError
}

func (e *ResolveError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("%s: %s: no candidate models", ErrNoViableModel, e.Provider)
	}
	parts := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		parts = append(parts, fmt.Sprintf("%s: %v", c.Model, c.Err))
	}
	return fmt.Sprintf("%s: %s: %s", ErrNoViableModel, e.Provider, strings.Join(parts, "; "))
}

func (e *ResolveError) Unwrap() error {
	return ErrNoViableModel
}

// GeneratorFactory builds a generator for one model.
type GeneratorFactory func(model string) (core.Generator, error)

// Resolve walks candidates in order and returns the first model that answers
// a short probe. With probe disabled the first candidate that can be
// constructed is accepted as is.
func Resolve(ctx context.Context, provider string, candidates []string, probe bool, factory GeneratorFactory) (Resolved, error) {
	logger := log.FromCtx(ctx)
	rerr := &ResolveError{Provider: provider}

	for _, model := range candidates {
		gen, err := factory(model)
		if err == nil && probe {
			err = ping(ctx, gen)
		}
		if err != nil {
			if ctx.Err() != nil {
				return Resolved{}, ctx.Err()
			}
			logger.Warn().Err(err).
				Str("provider", provider).
				Str("model", model).
				Msg("model candidate rejected")
			rerr.Candidates = append(rerr.Candidates, CandidateError{Model: model, Err: err})
			continue
		}

		logger.Info().
			Str("provider", provider).
			Str("model", model).
			Bool("probed", probe).
			Msg("model selected")
		return Resolved{Provider: provider, Model: model, Generator: gen}, nil
	}

	return Resolved{}, rerr
}

func ping(ctx context.Context, gen core.Generator) error {
	_, err := gen.Generate(ctx, core.GenerateRequest{
		Messages:  []core.Message{{Role: core.RoleUser, Content: "ping"}},
		MaxTokens: probeMaxTokens,
	})
	return err
}
