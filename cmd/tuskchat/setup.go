package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/providers/llm"
	"github.com/sandevgo/tuskchat/internal/providers/search"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/internal/service/command"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
)

// App is the surface independent part of the program: a resolved model, the
// turn orchestrator and the resources to release on exit.
type App struct {
	Config       *config.AppConfig
	Settings     llm.Settings
	Resolved     llm.Resolved
	Orchestrator *chat.Orchestrator
	SystemPrompt string
	// Cleanups are shut down after every surface
	Cleanups []srv.Service
}

// NewApp loads configuration and resolves the model. Any failure here is a
// configuration error and ends the process before a surface is shown.
func NewApp(ctx context.Context) *App {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	searchCfg := config.NewSearchConfig(ctx)

	settings, err := llm.SettingsFromConfig(appCfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", appCfg.Provider).Msg("failed to load provider settings")
	}

	// 2. Model selection
	resolved, err := resolveModel(ctx, appCfg, settings)
	if err != nil {
		logger.Fatal().Err(err).Msg("no usable model")
	}

	app := &App{
		Config:       appCfg,
		Settings:     settings,
		Resolved:     resolved,
		SystemPrompt: appCfg.LoadSystemPrompt(chat.DefaultSystemPrompt),
	}

	// 3. Retrieval
	var retriever core.Retriever
	r, err := search.NewRetriever(ctx, searchCfg)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", searchCfg.Provider).Msg("failed to initialize search")
	}
	if r != nil {
		retriever = r
		app.Cleanups = append(app.Cleanups, srv.NewCleanup(r.Close))
	}

	// 4. Token accounting, optional
	var tokens chat.TokenCounter
	if tk, err := chat.NewTiktoken(searchCfg.Encoding); err != nil {
		logger.Warn().Err(err).Str("encoding", searchCfg.Encoding).Msg("token counting disabled")
	} else {
		tokens = tk
	}

	app.Orchestrator = chat.NewOrchestrator(retriever, tokens, chat.Options{
		MaxResults:  searchCfg.MaxResults,
		Stream:      appCfg.Stream,
		Temperature: appCfg.Temperature,
		MaxTokens:   appCfg.MaxTokens,
		TokenBudget: searchCfg.TokenBudget,
	})

	logger.Info().
		Str("provider", resolved.Provider).
		Str("model", resolved.Model).
		Bool("search", retriever != nil).
		Bool("stream", appCfg.Stream).
		Msg("chat ready")
	return app
}

// NewSession starts a conversation with the resolved model.
func (a *App) NewSession() *chat.Session {
	return chat.NewSession(a.Resolved.Provider, a.Resolved.Model, a.Resolved.Generator, a.SystemPrompt)
}

func (a *App) NewRouter(sessions core.SessionManager) *command.Router {
	settings := a.Settings
	return command.NewRouter(sessions, func(ctx context.Context) ([]core.Model, error) {
		return llm.ListModels(ctx, settings)
	})
}

func resolveModel(ctx context.Context, cfg *config.AppConfig, settings llm.Settings) (llm.Resolved, error) {
	candidates := cfg.Models
	if len(candidates) == 0 {
		candidates = llm.DefaultModels(cfg.Provider)
	}

	return llm.Resolve(ctx, settings.Provider, candidates, cfg.ProbeModels, func(model string) (core.Generator, error) {
		return llm.NewGenerator(settings, model)
	})
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
