package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/luckydog/internal/api"
	"github.com/mj1618/luckydog/internal/bridge"
	"github.com/mj1618/luckydog/internal/classifier"
	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/mj1618/luckydog/internal/runner"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the device and claim red packets",
	Long: `Watch the device over adb and claim red packets until interrupted.

Events come from the adb watcher, and optionally from the HTTP API
(--api or api.addr) and the MQTT bridge (mqtt.broker). Claim records are
logged and, with MQTT enabled, published to <prefix>/<serial>/claims.
The --config file is watched and reloaded between events.

Examples:
  luckydog run
  luckydog run --serial emulator-5554 --api :8090
  luckydog run --config luckydog.yaml --log-level debug`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("api", "", "Serve the HTTP status API on this address, e.g. :8090")
	runCmd.Flags().Bool("no-watch", false, "Do not poll the device; only handle events from the API or MQTT")
}

// claimer is a runner with its optional API server and MQTT bridge.
type claimer struct {
	runner *runner.Runner
	api    *api.Server
	bridge *bridge.Bridge
	addr   string
}

// newClaimer wires the event sources and sinks around provider's host.
func newClaimer(ctx context.Context, provider *platform.Provider, cfg config.Config, stats *report.Stats, apiAddr string, watch bool) (*claimer, error) {
	var sources []platform.EventSource
	if watch && provider.Watcher != nil {
		sources = append(sources, provider.Watcher)
	}

	sink := report.Multi{report.LogSink{Log: logging.For("claims")}}
	c := &claimer{addr: apiAddr}

	if c.addr == "" {
		c.addr = cfg.API.Addr
	}
	if c.addr != "" {
		c.api = api.NewServer(stats, classifier.New(cfg.Target), cfg.ADB.Serial)
		sources = append(sources, c.api)
	}

	if cfg.MQTT.Broker != "" {
		c.bridge = bridge.New(cfg.MQTT, cfg.ADB.Serial)
		if err := c.bridge.Connect(ctx); err != nil {
			return nil, fmt.Errorf("mqtt: %w", err)
		}
		sources = append(sources, c.bridge)
		sink = append(sink, c.bridge)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no event sources: enable the watcher, --api or mqtt.broker")
	}

	r := runner.New(provider.Host, cfg, sources...)
	r.Sink = sink
	r.Stats = stats
	if c.api != nil {
		r.OnReload = func(cfg config.Config) {
			c.api.SetClassifier(classifier.New(cfg.Target))
		}
	}
	c.runner = r
	return c, nil
}

// Run serves the API (when enabled) and dispatches events until ctx is done.
func (c *claimer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c.bridge != nil {
		defer c.bridge.Close()
	}

	apiErr := make(chan error, 1)
	if c.api != nil {
		go func() {
			apiErr <- c.api.Run(ctx, c.addr)
		}()
	}

	err := c.runner.Run(ctx)
	cancel()
	if c.api != nil {
		if aerr := <-apiErr; aerr != nil && err == nil {
			err = fmt.Errorf("api: %w", aerr)
		}
	}
	return err
}

func runRun(cmd *cobra.Command, args []string) error {
	apiAddr, _ := cmd.Flags().GetString("api")
	noWatch, _ := cmd.Flags().GetBool("no-watch")
	configPath, _ := rootCmd.PersistentFlags().GetString("config")

	provider, err := newProvider()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	stats := report.NewStats()
	c, err := newClaimer(ctx, provider, appConfig, stats, apiAddr, !noWatch)
	if err != nil {
		return err
	}
	c.runner.ConfigPath = configPath

	if err := c.Run(ctx); err != nil {
		return err
	}
	return output.Print(stats.Snapshot())
}
