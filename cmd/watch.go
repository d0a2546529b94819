package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/luckydog/internal/classifier"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/spf13/cobra"
)

// WatchEvent is one line of watch output.
type WatchEvent struct {
	platform.ScreenEvent
	Category string `json:"category"`
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream screen events as JSON lines",
	Long: `Poll the device and print each screen event with its category as one JSON
object per line, without acting on it. Useful to check the target's screen
class names and notification tickers.

Examples:
  luckydog watch
  luckydog watch --duration 30s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	duration, _ := cmd.Flags().GetDuration("duration")

	provider, err := newProvider()
	if err != nil {
		return err
	}
	if provider.Watcher == nil {
		return fmt.Errorf("event watcher not available for this backend")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	if duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, duration)
		defer stop()
	}

	events, err := provider.Watcher.Events(ctx)
	if err != nil {
		return err
	}
	cls := classifier.New(appConfig.Target)
	for ev := range events {
		if err := output.PrintJSON(WatchEvent{ScreenEvent: ev, Category: cls.Classify(ev).String()}); err != nil {
			return err
		}
	}
	return nil
}
