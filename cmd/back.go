package cmd

import (
	"github.com/mj1618/luckydog/internal/output"
	"github.com/spf13/cobra"
)

var backCmd = &cobra.Command{
	Use:   "back",
	Short: "Press the device back button",
	RunE:  runBack,
}

func init() {
	rootCmd.AddCommand(backCmd)
}

func runBack(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := provider.Host.GlobalBack(ctx); err != nil {
		return err
	}
	return output.Print(ActionResult{OK: true, Action: "back"})
}
