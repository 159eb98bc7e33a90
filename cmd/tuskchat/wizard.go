package main

import (
	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/service/installer"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:           "setup",
	Short:         "Configure provider, API key and channel",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		runtimePath := config.GetRuntimePath()

		state, err := installer.RunWizard(runtimePath)
		if err != nil {
			return err
		}

		next := "tuskchat chat"
		if state.Settings.EnableTelegram {
			next = "tuskchat start"
		}
		logger.Info().Str("path", runtimePath).Msg("runtime directory initialized")
		logger.Info().Msgf("Setup complete! You can now run '%s'.", next)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
