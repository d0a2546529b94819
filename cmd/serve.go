package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/mj1618/luckydog/internal/server"
	"github.com/mj1618/luckydog/internal/version"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing luckydog tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the device as tools:
status, read, scan, classify and back. With --claim the claimer also runs
in the background and status reports its live statistics.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  luckydog serve
  luckydog serve --transport streamable-http --port 8080
  luckydog serve --claim --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Screen dump cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().Bool("claim", false, "Also watch the device and claim packets in the background")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	claim, _ := cmd.Flags().GetBool("claim")

	cfg := server.Config{
		Transport: transport,
		Port:      port,
		CacheTTL:  time.Duration(cacheTTLMs) * time.Millisecond,
		Version:   version.Version,
	}

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

	stats := report.NewStats()
	if claim {
		c, err := newClaimer(ctx, provider, appConfig, stats, "", true)
		if err != nil {
			return fmt.Errorf("failed to start claimer: %w", err)
		}
		go func() {
			if err := c.Run(ctx); err != nil {
				log := logging.For("serve")
				log.Error().Err(err).Msg("claimer stopped")
			}
		}()
	}

	srv := server.New(cfg, appConfig, provider.Host, d, stats)
	return srv.Serve(cfg)
}
