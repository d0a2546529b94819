package adb

import (
	"context"
	"fmt"
	"strings"

	"github.com/mj1618/luckydog/internal/platform"
)

// Devices lists attached devices through `adb devices -l`.
type Devices struct {
	run Runner
}

var _ platform.DeviceLister = Devices{}

func (d Devices) ListDevices(ctx context.Context) ([]platform.Device, error) {
	out, err := d.run.Run(ctx, "devices", "-l")
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return parseDevices(out), nil
}

// parseDevices reads lines such as
//
//	emulator-5554  device product:sdk_gphone64 model:sdk_gphone64_x86_64 device:emu64x transport_id:1
func parseDevices(out string) []platform.Device {
	var devices []platform.Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices attached") || strings.HasPrefix(line, "*") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		dev := platform.Device{Serial: parts[0], State: parts[1]}
		for _, p := range parts[2:] {
			if k, v, ok := strings.Cut(p, ":"); ok && k == "model" {
				dev.Model = v
			}
		}
		devices = append(devices, dev)
	}
	return devices
}
