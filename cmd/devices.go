package cmd

import (
	"fmt"

	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List attached Android devices",
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	provider, err := newProvider()
	if err != nil {
		return err
	}
	if provider.Devices == nil {
		return fmt.Errorf("device listing not available for this backend")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	devices, err := provider.Devices.ListDevices(ctx)
	if err != nil {
		return err
	}
	if devices == nil {
		devices = []platform.Device{}
	}
	return output.Print(devices)
}
