package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/core"
)

type probeGenerator struct {
	model string
	err   error
	calls int
}

func (p *probeGenerator) Generate(_ context.Context, req core.GenerateRequest) (core.GenerateResponse, error) {
	p.calls++
	if p.err != nil {
		return core.GenerateResponse{}, p.err
	}
	return core.GenerateResponse{Text: "pong"}, nil
}

func (p *probeGenerator) Stream(context.Context, core.GenerateRequest) (core.FragmentStream, error) {
	return nil, errors.New("not implemented")
}

func TestResolve(t *testing.T) {
	errDown := errors.New("model decommissioned")

	tests := []struct {
		name       string
		candidates []string
		failing    map[string]error
		probe      bool
		wantModel  string
		wantFailed []string
	}{
		{
			name:       "first candidate wins",
			candidates: []string{"a", "b"},
			probe:      true,
			wantModel:  "a",
		},
		{
			name:       "falls through failing candidates",
			candidates: []string{"a", "b", "c"},
			failing:    map[string]error{"a": errDown, "b": errDown},
			probe:      true,
			wantModel:  "c",
		},
		{
			name:       "all candidates fail",
			candidates: []string{"a", "b"},
			failing:    map[string]error{"a": errDown, "b": errDown},
			probe:      true,
			wantFailed: []string{"a", "b"},
		},
		{
			name:       "no probe accepts first candidate",
			candidates: []string{"a", "b"},
			failing:    map[string]error{"a": errDown},
			probe:      false,
			wantModel:  "a",
		},
		{
			name:       "empty candidate list",
			candidates: nil,
			probe:      true,
			wantFailed: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generators := map[string]*probeGenerator{}
			factory := func(model string) (core.Generator, error) {
				g := &probeGenerator{model: model, err: tt.failing[model]}
				generators[model] = g
				return g, nil
			}

			res, err := Resolve(context.Background(), "groq", tt.candidates, tt.probe, factory)
			if tt.wantFailed != nil {
				require.ErrorIs(t, err, ErrNoViableModel)

				var rerr *ResolveError
				require.ErrorAs(t, err, &rerr)
				assert.Equal(t, "groq", rerr.Provider)
				failed := []string{}
				for _, c := range rerr.Candidates {
					failed = append(failed, c.Model)
					assert.ErrorIs(t, c.Err, errDown)
				}
				assert.Equal(t, tt.wantFailed, failed)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, res.Model)
			assert.Equal(t, "groq", res.Provider)
			assert.Same(t, generators[tt.wantModel], res.Generator)
			if !tt.probe {
				assert.Zero(t, generators[tt.wantModel].calls)
			}
		})
	}
}

func TestResolve_FactoryError(t *testing.T) {
	factory := func(model string) (core.Generator, error) {
		return nil, ErrUnknownProvider
	}

	_, err := Resolve(context.Background(), "nope", []string{"x"}, false, factory)
	var rerr *ResolveError
	require.ErrorAs(t, err, &rerr)
	require.Len(t, rerr.Candidates, 1)
	assert.ErrorIs(t, rerr.Candidates[0].Err, ErrUnknownProvider)
}

func TestResolve_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := func(model string) (core.Generator, error) {
		return &probeGenerator{err: context.Canceled}, nil
	}

	_, err := Resolve(ctx, "groq", []string{"a", "b"}, true, factory)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGenerator(t *testing.T) {
	for _, provider := range []string{"groq", "openai", "openrouter", "ollama", "custom", "gemini", "anthropic"} {
		gen, err := NewGenerator(Settings{Provider: provider, APIKey: "k", BaseURL: "http://localhost"}, "m")
		require.NoError(t, err, provider)
		assert.NotNil(t, gen, provider)
	}

	_, err := NewGenerator(Settings{Provider: "unknown"}, "m")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestDefaultModels(t *testing.T) {
	assert.Equal(t, []string{"llama-3.3-70b-versatile"}, DefaultModels("groq"))
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}, DefaultModels("gemini"))
	assert.Nil(t, DefaultModels("custom"))
}
