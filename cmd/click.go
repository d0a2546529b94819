package cmd

import (
	"fmt"

	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/platform/adb"
	"github.com/mj1618/luckydog/internal/scanner"
	"github.com/spf13/cobra"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click a node or screen coordinates",
	Long: `Click the first node matching the criteria, or tap absolute coordinates.

A matched node that is not clickable itself is clicked through its nearest
clickable ancestor, the same way packets and popup buttons are opened.

Examples:
  luckydog click --id com.tencent.mm:id/tv
  luckydog click --text "Open" --exact
  luckydog click --x 540 --y 1200`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addFilterFlags(clickCmd, "text")
	clickCmd.Flags().Int("x", -1, "Tap at absolute X coordinate")
	clickCmd.Flags().Int("y", -1, "Tap at absolute Y coordinate")
}

func runClick(cmd *cobra.Command, args []string) error {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	f := filterFromFlags(cmd, "text")
	byCoords := x >= 0 || y >= 0
	if byCoords && (x < 0 || y < 0) {
		return fmt.Errorf("--x and --y must be given together")
	}
	if !byCoords && f.IsEmpty() {
		return fmt.Errorf("specify --x/--y or at least one of --text, --id, --class, --roles")
	}

	provider, err := newProvider()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if byCoords {
		h, ok := provider.Host.(*adb.Host)
		if !ok {
			return fmt.Errorf("host %T cannot tap coordinates", provider.Host)
		}
		if err := h.Tap(ctx, model.Bounds{X1: x, Y1: y, X2: x + 1, Y2: y + 1}); err != nil {
			return err
		}
		return output.Print(ActionResult{OK: true, Action: "tap", Match: fmt.Sprintf("%d,%d", x, y)})
	}

	d, err := dumper(provider)
	if err != nil {
		return err
	}
	hier, err := d.Dump(ctx)
	if err != nil {
		return fmt.Errorf("failed to read screen: %w", err)
	}
	target := model.FindFirst(hier.Root(), f)
	if target == nil {
		return fmt.Errorf("no node matches %s", describeFilter(f))
	}

	ok, err := scanner.DispatchClick(ctx, provider.Host, target)
	if err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("node %s has no clickable ancestor", describeFilter(f))
	}
	return output.Print(ActionResult{OK: true, Action: "click", Target: elementInfo(target), Match: describeFilter(f)})
}
