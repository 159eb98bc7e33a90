package config

import (
	"errors"
	"fmt"
)

var ErrMissingSecret = errors.New("missing api key")

// Secrets holds provider credentials. Keys are looked up by fixed names.
type Secrets struct {
	GroqAPIKey         string `env:"GROQ_API_KEY"`
	GeminiAPIKey       string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey    string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey   string `env:"OPENROUTER_API_KEY"`
	OllamaAPIKey       string `env:"OLLAMA_API_KEY"`
	CustomOpenAIAPIKey string `env:"CUSTOM_OPENAI_API_KEY"`
}

// KeyName returns the environment variable holding the provider credential.
func KeyName(provider string) (string, bool) {
	switch provider {
	case "groq":
		return "GROQ_API_KEY", true
	case "gemini":
		return "GEMINI_API_KEY", true
	case "openai":
		return "OPENAI_API_KEY", true
	case "anthropic":
		return "ANTHROPIC_API_KEY", true
	case "openrouter":
		return "OPENROUTER_API_KEY", true
	case "ollama":
		return "OLLAMA_API_KEY", true
	case "custom":
		return "CUSTOM_OPENAI_API_KEY", true
	}
	return "", false
}

func (s Secrets) APIKey(provider string) (string, error) {
	name, ok := KeyName(provider)
	if !ok {
		return "", fmt.Errorf("unknown provider: %q", provider)
	}

	var key string
	switch provider {
	case "groq":
		key = s.GroqAPIKey
	case "gemini":
		key = s.GeminiAPIKey
	case "openai":
		key = s.OpenAIAPIKey
	case "anthropic":
		key = s.AnthropicAPIKey
	case "openrouter":
		key = s.OpenRouterAPIKey
	case "ollama":
		// local ollama runs without auth
		return s.OllamaAPIKey, nil
	case "custom":
		key = s.CustomOpenAIAPIKey
	}

	if key == "" {
		return "", fmt.Errorf("%w: set %s", ErrMissingSecret, name)
	}
	return key, nil
}

// Set stores key as the credential of provider.
func (s *Secrets) Set(provider, key string) error {
	switch provider {
	case "groq":
		s.GroqAPIKey = key
	case "gemini":
		s.GeminiAPIKey = key
	case "openai":
		s.OpenAIAPIKey = key
	case "anthropic":
		s.AnthropicAPIKey = key
	case "openrouter":
		s.OpenRouterAPIKey = key
	case "ollama":
		s.OllamaAPIKey = key
	case "custom":
		s.CustomOpenAIAPIKey = key
	default:
		return fmt.Errorf("unknown provider: %q", provider)
	}
	return nil
}
