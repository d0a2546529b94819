// Package server exposes the claimer as Model Context Protocol tools.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/luckydog/internal/classifier"
	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/mj1618/luckydog/internal/scanner"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	CacheTTL  time.Duration
	Version   string
}

// Server wraps the MCP server with the host and tree cache.
type Server struct {
	host       platform.Host
	dumper     Dumper
	cache      *TreeCache
	classifier classifier.Classifier
	scanner    scanner.Scanner
	stats      *report.Stats
	serial     string

	// hostMu serializes tool calls against the device.
	hostMu sync.Mutex
	mcp    *mcpserver.MCPServer
}

// New creates and configures an MCP server. dumper may be nil when the
// host cannot produce full hierarchies; read is then unavailable.
func New(cfg Config, appCfg config.Config, host platform.Host, dumper Dumper, stats *report.Stats) *Server {
	if stats == nil {
		stats = report.NewStats()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{
		host:       host,
		dumper:     dumper,
		cache:      NewTreeCache(cfg.CacheTTL),
		classifier: classifier.New(appCfg.Target),
		scanner:    scanner.New(appCfg.Target),
		stats:      stats,
		serial:     appCfg.ADB.Serial,
	}
	s.mcp = mcpserver.NewMCPServer("luckydog", version)
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// status
	s.mcp.AddTool(
		mcp.NewTool("status",
			mcp.WithDescription("Report claim statistics: events seen, packets opened, backs, notifications opened, failures"),
		),
		s.handleStatus,
	)

	// read
	s.mcp.AddTool(
		mcp.NewTool("read",
			mcp.WithDescription("Read the UI tree of the device's current screen from a uiautomator dump"),
			mcp.WithBoolean("flat", mcp.Description("Return a flat list with breadcrumb paths instead of a tree")),
			mcp.WithString("text", mcp.Description("Filter by text or content description substring (flat only)")),
			mcp.WithString("id", mcp.Description("Filter by resource id, e.g. com.tencent.mm:id/tv (flat only)")),
			mcp.WithString("roles", mcp.Description("Comma-separated roles: btn, txt, input, interactive (flat only)")),
			mcp.WithBoolean("clickable", mcp.Description("Only clickable nodes (flat only)")),
		),
		s.handleRead,
	)

	// scan
	s.mcp.AddTool(
		mcp.NewTool("scan",
			mcp.WithDescription("Look for an unclaimed red packet and an open button on the current screen without clicking"),
		),
		s.handleScan,
	)

	// classify
	s.mcp.AddTool(
		mcp.NewTool("classify",
			mcp.WithDescription("Classify a screen event as ignored, chat, detail or popup"),
			mcp.WithString("package", mcp.Required(), mcp.Description("Source package")),
			mcp.WithString("class", mcp.Description("Screen class name")),
			mcp.WithString("type", mcp.Description("Event type: state, content, notification (default content)")),
		),
		s.handleClassify,
	)

	// back
	s.mcp.AddTool(
		mcp.NewTool("back",
			mcp.WithDescription("Press the device's back key"),
		),
		s.handleBack,
	)
}
