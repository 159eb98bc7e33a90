package installer

import (
	"github.com/sandevgo/tuskchat/internal/config"
)

// Settings is what the wizard writes to .env.
type Settings struct {
	Provider            string `env:"TUSK_PROVIDER"`
	Models              string `env:"TUSK_MODELS"`
	CustomOpenAIBaseURL string `env:"TUSK_CUSTOM_OPENAI_BASE_URL"`
	OllamaBaseURL       string `env:"TUSK_OLLAMA_BASE_URL"`
	Secrets             config.Secrets

	// kept as text so an explicit "false" survives marshaling
	SearchEnabled string `env:"TUSK_SEARCH_ENABLED"`

	EnableTelegram  bool   `env:"TUSK_ENABLE_TELEGRAM"`
	TelegramToken   string `env:"TUSK_TELEGRAM_TOKEN"`
	TelegramOwnerID int64  `env:"TUSK_TELEGRAM_OWNER_ID"`
}

type InstallState struct {
	Settings Settings
	// RuntimePath receives .env and SYSTEM.md
	RuntimePath string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{RuntimePath: runtimePath}
}
