package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spacesedan/sentilens/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the page and the /api/predict relay",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(loadedConfig).Run(ctx)
}
