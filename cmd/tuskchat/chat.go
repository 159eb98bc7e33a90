package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/tuskchat/internal/transport/tui"
	"github.com/sandevgo/tuskchat/pkg/log"
	"github.com/sandevgo/tuskchat/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in the terminal",
	Long:  `Opens a full screen chat. While it is open logs go to tuskchat.log in the runtime directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// configuration errors are reported on the console
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app := NewApp(ctx)
		defer srv.ShutdownServices(ctx, app.Cleanups)

		// the alt screen owns the terminal from here on
		tuiCtx, flushFile, err := log.NewContextWithFileLogger(ctx, isDebug(), app.Config.GetLogPath())
		if err != nil {
			return err
		}
		defer flushFile()

		sessions := tui.NewSessions(app.NewSession, app.Orchestrator.SearchEnabled())
		return tui.Run(tuiCtx, app.Orchestrator, sessions, app.NewRouter(sessions))
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
