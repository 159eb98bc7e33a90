package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

// Settings selects a provider and its connection details. Model is chosen
// separately, usually through Resolve.
type Settings struct {
	Provider  string
	APIKey    string
	BaseURL   string
	Grounding bool
}

// SettingsFromConfig reads provider settings and the credential of the
// selected provider. A missing credential is returned as config.ErrMissingSecret.
func SettingsFromConfig(cfg *config.AppConfig) (Settings, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		Provider:  cfg.Provider,
		APIKey:    key,
		Grounding: cfg.Grounding,
	}
	switch cfg.Provider {
	case "ollama":
		s.BaseURL = cfg.OllamaBaseURL
	case "custom":
		s.BaseURL = cfg.CustomOpenAIBaseURL
		if s.BaseURL == "" {
			return Settings{}, fmt.Errorf("TUSK_CUSTOM_OPENAI_BASE_URL is required for the custom provider")
		}
	}
	return s, nil
}

// ModelLister is implemented by generators that can enumerate remote models.
type ModelLister interface {
	Models(ctx context.Context) ([]core.Model, error)
}

// NewGenerator creates the generator of the configured provider bound to model.
func NewGenerator(s Settings, model string) (core.Generator, error) {
	switch s.Provider {
	case "groq":
		if s.BaseURL != "" {
			return newGroqWithBaseURL(s.BaseURL, s.APIKey, model), nil
		}
		return NewGroq(s.APIKey, model), nil
	case "openai":
		return NewOpenAI(s.APIKey, model), nil
	case "openrouter":
		return NewOpenRouter(s.APIKey, model), nil
	case "ollama":
		return NewOllama(s.BaseURL, s.APIKey, model), nil
	case "custom":
		return NewCustomOpenAI(s.BaseURL, s.APIKey, model), nil
	case "gemini":
		if s.BaseURL != "" {
			return newGeminiWithBaseURL(s.BaseURL, s.APIKey, model, s.Grounding), nil
		}
		return NewGemini(s.APIKey, model, s.Grounding), nil
	case "anthropic":
		if s.BaseURL != "" {
			return newAnthropicWithBaseURL(s.BaseURL, s.APIKey, model), nil
		}
		return NewAnthropic(s.APIKey, model), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, s.Provider)
	}
}

// DefaultModels is the candidate list used when none is configured.
func DefaultModels(provider string) []string {
	switch provider {
	case "groq":
		return []string{"llama-3.3-70b-versatile"}
	case "gemini":
		return []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}
	case "openai":
		return []string{"gpt-4o-mini"}
	case "anthropic":
		return []string{"claude-3-5-haiku-latest"}
	case "openrouter":
		return []string{"meta-llama/llama-3.3-70b-instruct"}
	case "ollama":
		return []string{"llama3.2"}
	}
	return nil
}

// ListModels enumerates the models offered by the configured provider.
func ListModels(ctx context.Context, s Settings) ([]core.Model, error) {
	gen, err := NewGenerator(s, "")
	if err != nil {
		return nil, err
	}
	lister, ok := gen.(ModelLister)
	if !ok {
		return nil, fmt.Errorf("provider %s cannot list models", s.Provider)
	}

	log.FromCtx(ctx).Debug().Str("provider", s.Provider).Msg("listing models")
	return lister.Models(ctx)
}
