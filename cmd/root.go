package cmd

import (
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/spf13/cobra"

	"github.com/KikeGitHub/lealtix-main/internal/app"
	"github.com/KikeGitHub/lealtix-main/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "lealbot",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			app.StartSessionSweeper,
		).Run()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
