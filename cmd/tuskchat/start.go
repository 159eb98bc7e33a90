package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/transport/telegram"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the Telegram bot",
	Long:  `Resolves the model and serves chats from the bot owner until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// logger setup
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting tuskchat")

		app := NewApp(ctx)
		if !app.Config.EnableTelegram {
			return errors.New("telegram is not enabled, set TUSK_ENABLE_TELEGRAM=true or use 'tuskchat chat'")
		}

		tgCfg := config.NewTelegramConfig(ctx)
		registry := telegram.NewRegistry(app.NewSession, app.Orchestrator.SearchEnabled())
		bot, err := telegram.NewBot(ctx, tgCfg, registry, app.Orchestrator, app.NewRouter(registry), isDebug())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}

		services := append(app.Cleanups, bot)

		if err := srv.Wait(ctx, srv.StartServices(ctx, services)); err != nil {
			logger.Error().Err(err).Msg("service failed")
		}

		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("tuskchat has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
