package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/sentilens/internal/normalize"
	"github.com/spacesedan/sentilens/internal/submit"
)

var (
	analyzeRelayURL string
	analyzeTimeout  time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Send text to a running relay and print the sentiment",
	Long: `Sends text to a running sentilens relay and prints the detected label and
confidence. With no arguments the text is read from stdin.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRelayURL, "relay", "http://localhost:3000", "base URL of the sentilens relay")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 15*time.Second, "how long to wait for the relay")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 0 {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(b)
	}

	result, err := submit.NewSubmitter(analyzeRelayURL, analyzeTimeout).Submit(cmd.Context(), text)
	if errors.Is(err, submit.ErrEmptyText) {
		return errors.New("nothing to analyze: text is empty")
	}
	if err != nil {
		return err
	}

	display := normalize.ToDisplay(result)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d%%\n", display.Sentiment, display.Percent)
	return nil
}
