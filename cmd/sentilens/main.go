package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spacesedan/sentilens/config"
	"github.com/spacesedan/sentilens/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "sentilens",
	Short:         "Sentiment analysis page and relay",
	Long:          `sentilens serves a small page and a same-origin /api/predict relay in front of an external sentiment service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadEnv(config.AppEnv())
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.InitLogger(cfg.LogLevel)
		loadedConfig = cfg
		return nil
	},
}

// loadedConfig is filled in by the root pre-run hook.
var loadedConfig config.Config

func init() {
	rootCmd.AddCommand(serveCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
