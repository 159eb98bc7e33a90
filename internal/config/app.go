package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskchat/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"TUSK_RUNTIME_PATH" envDefault:".tuskchat"`
	// Allow selecting the provider
	Provider string `env:"TUSK_PROVIDER" envDefault:"groq"`

	// Ordered model candidates, the first one answering the probe wins
	Models      []string `env:"TUSK_MODELS" envSeparator:","`
	ProbeModels bool     `env:"TUSK_PROBE_MODELS" envDefault:"true"`

	// Generation parameters
	Temperature float64 `env:"TUSK_TEMPERATURE" envDefault:"0.7"`
	MaxTokens   int     `env:"TUSK_MAX_TOKENS" envDefault:"4096"`
	Stream      bool    `env:"TUSK_STREAM" envDefault:"true"`
	Grounding   bool    `env:"TUSK_GEMINI_GROUNDING" envDefault:"false"`

	SystemPrompt string `env:"TUSK_SYSTEM_PROMPT"`

	CustomOpenAIBaseURL string `env:"TUSK_CUSTOM_OPENAI_BASE_URL"`
	OllamaBaseURL       string `env:"TUSK_OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`

	// Transport Flags
	EnableTelegram bool `env:"TUSK_ENABLE_TELEGRAM" envDefault:"false"`

	Secrets Secrets
}

func LoadAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)

	models := c.Models[:0]
	for _, m := range c.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	c.Models = models

	if c.MaxTokens < 0 {
		return nil, fmt.Errorf("TUSK_MAX_TOKENS must not be negative: %d", c.MaxTokens)
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := LoadAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

// APIKey returns the credential of the selected provider.
func (c AppConfig) APIKey() (string, error) {
	return c.Secrets.APIKey(c.Provider)
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetLogPath() string {
	return filepath.Join(c.RuntimePath, "tuskchat.log")
}

// LoadSystemPrompt prefers TUSK_SYSTEM_PROMPT, then SYSTEM.md in the runtime
// directory, then the given fallback.
func (c AppConfig) LoadSystemPrompt(fallback string) string {
	if p := strings.TrimSpace(c.SystemPrompt); p != "" {
		return p
	}
	if data, err := os.ReadFile(c.GetSystemPath()); err == nil {
		if p := strings.TrimSpace(string(data)); p != "" {
			return p
		}
	}
	return fallback
}
