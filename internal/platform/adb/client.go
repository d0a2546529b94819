// Package adb implements the platform interfaces for an Android device
// reached through the adb command-line tool.
package adb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/mj1618/luckydog/internal/logging"
	"github.com/rs/zerolog"
)

// ErrNoDevice is returned when adb cannot reach the requested device.
var ErrNoDevice = errors.New("no device available")

// Runner executes adb with the given arguments and returns its combined
// output.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the adb binary at Path.
type ExecRunner struct {
	Path string
}

func (r ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	path := r.Path
	if path == "" {
		path = "adb"
	}
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	res := string(out)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if noDevice(res) {
			return res, fmt.Errorf("%w: %s", ErrNoDevice, strings.TrimSpace(res))
		}
		return res, fmt.Errorf("adb %s: %w, output: %s", strings.Join(args, " "), err, strings.TrimSpace(res))
	}
	return res, nil
}

var missingDevicePattern = regexp.MustCompile(`device '[^']*' not found`)

// noDevice reports whether out is adb's own complaint about the target
// device, as opposed to a failure of the shell command.
func noDevice(out string) bool {
	for _, s := range []string{"no devices/emulators found", "device offline", "device unauthorized", "more than one device/emulator"} {
		if strings.Contains(out, s) {
			return true
		}
	}
	return missingDevicePattern.MatchString(out)
}

// Client issues commands to one device. An empty serial lets adb pick the
// only attached device.
type Client struct {
	run    Runner
	serial string
	log    zerolog.Logger
}

// NewClient wraps a runner for the device with the given serial.
func NewClient(r Runner, serial string) *Client {
	return &Client{run: r, serial: serial, log: logging.For("adb")}
}

// Serial returns the device serial the client targets.
func (c *Client) Serial() string { return c.serial }

// Shell runs a command in the device shell.
func (c *Client) Shell(ctx context.Context, command string) (string, error) {
	var args []string
	if c.serial != "" {
		args = append(args, "-s", c.serial)
	}
	args = append(args, "shell", command)
	c.log.Debug().Str("cmd", command).Msg("shell")
	return c.run.Run(ctx, args...)
}
