package main

import (
	"fmt"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/providers/llm"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/spf13/cobra"
)

var listModels bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Resolve the candidate models and print the selected one",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		cfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		settings, err := llm.SettingsFromConfig(cfg)
		if err != nil {
			return err
		}

		if listModels {
			models, err := llm.ListModels(ctx, settings)
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Fprintln(cmd.OutOrStdout(), m.ID)
			}
			return nil
		}

		resolved, err := resolveModel(ctx, cfg, settings)
		if err != nil {
			logger.Error().Err(err).Msg("no usable model")
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", resolved.Provider, resolved.Model)
		return nil
	},
}

func init() {
	modelsCmd.Flags().BoolVarP(&listModels, "list", "l", false, "list every model the provider offers")
	rootCmd.AddCommand(modelsCmd)
}
