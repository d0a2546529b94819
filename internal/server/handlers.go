package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/output"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/scanner"
	"gopkg.in/yaml.v3"
)

func toText(v interface{}) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			return b == "true"
		}
	}
	return defaultVal
}

func (s *Server) handleStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toText(s.stats.Snapshot())
}

func (s *Server) handleRead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	if s.dumper == nil {
		return mcp.NewToolResultError("read not available for this host"), nil
	}

	s.hostMu.Lock()
	hier, err := s.cache.Dump(ctx, s.dumper)
	s.hostMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root := hier.Root()
	app := ""
	if root != nil {
		app = root.Package
	}

	if !boolParam(params, "flat", false) {
		return toText(output.ReadResult{Serial: s.serial, App: app, TS: time.Now().Unix(), Root: root})
	}

	f := model.Filter{
		ViewID:        stringParam(params, "id", ""),
		Text:          stringParam(params, "text", ""),
		Roles:         model.ParseRoles(stringParam(params, "roles", "")),
		ClickableOnly: boolParam(params, "clickable", false),
	}
	flat := model.FlattenFiltered(root, f)
	return toText(output.ReadFlatResult{Serial: s.serial, App: app, TS: time.Now().Unix(), Elements: flat})
}

// scanResult describes what the coordinator would act on.
type scanResult struct {
	Reward       *scanHit `yaml:"reward,omitempty"        json:"reward,omitempty"`
	Button       *scanHit `yaml:"button,omitempty"        json:"button,omitempty"`
	NothingFound bool     `yaml:"nothing_found,omitempty" json:"nothing_found,omitempty"`
}

type scanHit struct {
	Class  string `yaml:"class"            json:"class"`
	ID     string `yaml:"id,omitempty"     json:"id,omitempty"`
	Text   string `yaml:"text,omitempty"   json:"text,omitempty"`
	Target string `yaml:"target"           json:"target"`
	Bounds string `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

func hit(n platform.Node) *scanHit {
	if n == nil {
		return nil
	}
	h := &scanHit{Class: n.ClassName(), ID: n.ViewID(), Target: "none"}
	if mn, ok := n.(*model.Node); ok {
		h.Text = mn.Label()
	}
	if t := scanner.ClickableAncestor(n); t != nil {
		h.Target = t.ClassName()
		if mt, ok := t.(*model.Node); ok {
			h.Bounds = mt.Bounds
		}
	}
	return h
}

func (s *Server) handleScan(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.hostMu.Lock()
	root, err := s.host.RootInActiveWindow(ctx)
	s.hostMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := scanResult{
		Reward: hit(s.scanner.FindUnclaimedReward(root)),
		Button: hit(s.scanner.FindButton(root)),
	}
	res.NothingFound = res.Reward == nil && res.Button == nil
	return toText(res)
}

func (s *Server) handleClassify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	typ, err := platform.ParseEventType(stringParam(params, "type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev := platform.ScreenEvent{
		Package:   stringParam(params, "package", ""),
		ClassName: stringParam(params, "class", ""),
		Type:      typ,
	}
	return toText(map[string]string{"category": s.classifier.Classify(ev).String()})
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.hostMu.Lock()
	defer s.hostMu.Unlock()

	if err := s.host.GlobalBack(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.Invalidate()
	return toText(map[string]interface{}{"ok": true, "action": "back"})
}
