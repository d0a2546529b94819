package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/server"
	"github.com/spf13/cobra"
)

// WaitResult is the output of a wait command.
type WaitResult struct {
	OK       bool   `yaml:"ok"                  json:"ok"`
	Action   string `yaml:"action"              json:"action"`
	Elapsed  string `yaml:"elapsed"             json:"elapsed"`
	Match    string `yaml:"match,omitempty"     json:"match,omitempty"`
	TimedOut bool   `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a node to appear or disappear",
	Long: `Poll the current screen until a node matching the criteria exists, or with
--gone until none does, or the timeout is reached.

Examples:
  luckydog wait --for-class android.widget.Button --timeout 5
  luckydog wait --for-id com.tencent.mm:id/tv --gone`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	addFilterFlags(waitCmd, "for-text")
	waitCmd.Flags().String("for-id", "", "Wait for a node with this resource id")
	waitCmd.Flags().String("for-class", "", "Wait for a node with this widget class")
	waitCmd.Flags().Bool("gone", false, "Invert: wait until the condition is NO LONGER true")
	waitCmd.Flags().Int("timeout", 30, "Max seconds to wait")
	waitCmd.Flags().Int("interval", 500, "Polling interval in milliseconds")
}

func waitFilterFromFlags(cmd *cobra.Command) model.Filter {
	f := filterFromFlags(cmd, "for-text")
	if id, _ := cmd.Flags().GetString("for-id"); id != "" {
		f.ViewID = id
	}
	if class, _ := cmd.Flags().GetString("for-class"); class != "" {
		f.Class = class
	}
	return f
}

func runWait(cmd *cobra.Command, args []string) error {
	f := waitFilterFromFlags(cmd)
	if f.IsEmpty() {
		return fmt.Errorf("specify at least one condition: --for-text, --for-id, --for-class or --roles")
	}
	gone, _ := cmd.Flags().GetBool("gone")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	intervalMs, _ := cmd.Flags().GetInt("interval")

	provider, err := newProvider()
	if err != nil {
		return err
	}
	d, err := dumper(provider)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	timeout := time.Duration(timeoutSec) * time.Second
	interval := time.Duration(intervalMs) * time.Millisecond
	desc := describeFilter(f)
	if gone {
		desc += " (gone)"
	}

	start := time.Now()
	met, err := waitFor(ctx, d, f, gone, timeout, interval)
	result := WaitResult{
		OK:      met,
		Action:  "wait",
		Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		Match:   desc,
	}
	if err != nil {
		return err
	}
	if !met {
		result.TimedOut = true
		// Print the result, then return an error for non-zero exit code
		_ = output.Print(result)
		return fmt.Errorf("timed out waiting for condition: %s", desc)
	}
	return output.Print(result)
}

// waitFor polls d until the condition holds or timeout passes. Dump errors
// are retried until the deadline, then returned.
func waitFor(ctx context.Context, d server.Dumper, f model.Filter, gone bool, timeout, interval time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		hier, err := d.Dump(ctx)
		if err == nil {
			matched := model.FindFirst(hier.Root(), f) != nil
			if matched != gone {
				return true, nil
			}
		}
		if time.Now().After(deadline) {
			if err != nil {
				return false, fmt.Errorf("timeout after %s (last error: %w)", timeout, err)
			}
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
}
