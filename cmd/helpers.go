package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/server"
	"github.com/spf13/cobra"
)

// ElementInfo is the compact description of a node in command results.
type ElementInfo struct {
	Class  string `yaml:"class"            json:"class"`
	ID     string `yaml:"id,omitempty"     json:"id,omitempty"`
	Text   string `yaml:"text,omitempty"   json:"text,omitempty"`
	Bounds string `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

// ActionResult is the output of a command that acted on the device.
type ActionResult struct {
	OK      bool         `yaml:"ok"                json:"ok"`
	Action  string       `yaml:"action"            json:"action"`
	Target  *ElementInfo `yaml:"target,omitempty"  json:"target,omitempty"`
	Elapsed string       `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
	Match   string       `yaml:"match,omitempty"   json:"match,omitempty"`
}

func elementInfo(n *model.Node) *ElementInfo {
	if n == nil {
		return nil
	}
	return &ElementInfo{Class: n.Class, ID: n.ResourceID, Text: n.Label(), Bounds: n.Bounds}
}

// newProvider builds the host backend from the loaded configuration.
func newProvider() (*platform.Provider, error) {
	return platform.NewProvider(platform.ProviderOptions{
		ADBPath:       appConfig.ADB.Path,
		Serial:        appConfig.ADB.Serial,
		TargetPackage: appConfig.Target.Package,
		WatchInterval: appConfig.ADB.WatchInterval,
	})
}

// dumper returns the provider's full-hierarchy reader.
func dumper(p *platform.Provider) (server.Dumper, error) {
	d, ok := p.Host.(server.Dumper)
	if !ok {
		return nil, fmt.Errorf("host %T cannot dump the screen", p.Host)
	}
	return d, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// addFilterFlags registers the node-selection flags shared by find, click
// and wait.
func addFilterFlags(cmd *cobra.Command, textFlag string) {
	cmd.Flags().String(textFlag, "", "Match text or content description (case-insensitive substring)")
	cmd.Flags().String("id", "", "Match resource id, e.g. com.tencent.mm:id/tv")
	cmd.Flags().String("class", "", "Match widget class, e.g. android.widget.Button")
	cmd.Flags().String("roles", "", "Comma-separated roles (e.g. \"btn,input\" or \"interactive\")")
	cmd.Flags().Bool("exact", false, "Require exact text match instead of substring")
	cmd.Flags().Bool("clickable", false, "Only clickable nodes")
}

func filterFromFlags(cmd *cobra.Command, textFlag string) model.Filter {
	text, _ := cmd.Flags().GetString(textFlag)
	id, _ := cmd.Flags().GetString("id")
	class, _ := cmd.Flags().GetString("class")
	roles, _ := cmd.Flags().GetString("roles")
	exact, _ := cmd.Flags().GetBool("exact")
	clickable, _ := cmd.Flags().GetBool("clickable")
	return model.Filter{
		ViewID:        id,
		Class:         class,
		Roles:         model.ParseRoles(roles),
		Text:          text,
		Exact:         exact,
		ClickableOnly: clickable,
	}
}

// describeFilter returns a human-readable description of the criteria.
func describeFilter(f model.Filter) string {
	var parts []string
	if f.ViewID != "" {
		parts = append(parts, "id="+f.ViewID)
	}
	if f.Class != "" {
		parts = append(parts, "class="+f.Class)
	}
	for _, r := range f.Roles {
		parts = append(parts, "role="+r)
	}
	if f.Text != "" {
		parts = append(parts, fmt.Sprintf("text=%q", f.Text))
	}
	if f.ClickableOnly {
		parts = append(parts, "clickable")
	}
	return strings.Join(parts, " ")
}
