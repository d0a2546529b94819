package adb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mj1618/luckydog/internal/model"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/scanner"
)

const dumpFile = "/data/local/tmp/luckydog.xml"

// ErrNotificationGone is returned when the pending action's notification is
// no longer shown in the shade.
var ErrNotificationGone = errors.New("notification not found in shade")

// Host drives the device through uiautomator dumps and input events. Its
// methods are safe for concurrent use; commands are issued one at a time
// because every dump shares one file on the device.
type Host struct {
	c  *Client
	mu sync.Mutex

	// Retries bounds the dump attempts; uiautomator fails intermittently
	// while the screen animates.
	Retries int
	// RetryDelay is waited after killing a stuck uiautomator.
	RetryDelay time.Duration
	// ShadeDelay is waited for the notification shade to open.
	ShadeDelay time.Duration

	sleep func(time.Duration)
}

var _ platform.Host = (*Host)(nil)

// NewHost returns a host for the client's device.
func NewHost(c *Client) *Host {
	return &Host{
		c:          c,
		Retries:    3,
		RetryDelay: 500 * time.Millisecond,
		ShadeDelay: 400 * time.Millisecond,
		sleep:      time.Sleep,
	}
}

// Dump returns the parsed hierarchy of the current screen.
func (h *Host) Dump(ctx context.Context) (*model.Hierarchy, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dump(ctx)
}

func (h *Host) dump(ctx context.Context) (*model.Hierarchy, error) {
	var out string
	var err error
	for i := 0; i < h.Retries; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i > 0 {
			_, _ = h.c.Shell(ctx, "pkill uiautomator")
			h.sleep(h.RetryDelay)
		}
		out, err = h.c.Shell(ctx, fmt.Sprintf("uiautomator dump %s && cat %s", dumpFile, dumpFile))
		if err == nil && strings.Contains(out, "<hierarchy") {
			break
		}
		if errors.Is(err, ErrNoDevice) || ctx.Err() != nil {
			return nil, err
		}
		h.c.log.Debug().Int("retry", i+1).Err(err).Msg("ui dump retry")
	}
	if err != nil {
		return nil, fmt.Errorf("dump ui after %d attempts: %w", h.Retries, err)
	}
	if !strings.Contains(out, "<hierarchy") {
		return nil, fmt.Errorf("dump ui after %d attempts: no hierarchy in output", h.Retries)
	}
	return model.ParseHierarchy([]byte(out))
}

// RootInActiveWindow dumps the screen. An empty dump yields a nil node.
func (h *Host) RootInActiveWindow(ctx context.Context) (platform.Node, error) {
	hier, err := h.Dump(ctx)
	if err != nil {
		return nil, err
	}
	root := hier.Root()
	if root == nil {
		return nil, nil
	}
	return root, nil
}

// Click taps the centre of the node. Only nodes from this host's dumps
// carry bounds.
func (h *Host) Click(ctx context.Context, n platform.Node) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.click(ctx, n)
}

func (h *Host) click(ctx context.Context, n platform.Node) error {
	mn, ok := n.(*model.Node)
	if !ok || mn == nil {
		return fmt.Errorf("click: node %T has no screen bounds", n)
	}
	b, err := model.ParseBounds(mn.Bounds)
	if err != nil {
		return fmt.Errorf("click: %w", err)
	}
	if b.Empty() {
		return fmt.Errorf("click: %s is not on screen", mn.Bounds)
	}
	return h.tap(ctx, b)
}

// Tap sends a tap at the centre of b.
func (h *Host) Tap(ctx context.Context, b model.Bounds) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tap(ctx, b)
}

func (h *Host) tap(ctx context.Context, b model.Bounds) error {
	x, y := b.Center()
	if _, err := h.c.Shell(ctx, fmt.Sprintf("input tap %d %d", x, y)); err != nil {
		return fmt.Errorf("tap %d,%d: %w", x, y, err)
	}
	return nil
}

// GlobalBack presses the back key.
func (h *Host) GlobalBack(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.c.Shell(ctx, "input keyevent 4"); err != nil {
		return fmt.Errorf("back: %w", err)
	}
	return nil
}

// InvokePending opens the notification shade and taps the entry showing
// the action's text. adb cannot fire a PendingIntent directly.
func (h *Host) InvokePending(ctx context.Context, a platform.PendingAction) error {
	if a.Text == "" {
		return fmt.Errorf("invoke %s: nothing to locate in the shade", a.Key)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.c.Shell(ctx, "cmd statusbar expand-notifications"); err != nil {
		return fmt.Errorf("expand notifications: %w", err)
	}
	h.sleep(h.ShadeDelay)

	hier, err := h.dump(ctx)
	if err != nil {
		h.collapse(ctx)
		return err
	}
	row := shadeEntry(hier.Root(), a)
	if row == nil {
		h.collapse(ctx)
		return fmt.Errorf("%w: %q", ErrNotificationGone, a.Text)
	}
	return h.click(ctx, row)
}

// shadeEntry returns the notification row showing a's text and, when set,
// its detail. Exact text matches are preferred over substring matches.
func shadeEntry(root *model.Node, a platform.PendingAction) *model.Node {
	for _, exact := range []bool{true, false} {
		for _, n := range model.FindAll(root, model.Filter{Text: a.Text, Exact: exact}) {
			row := n
			if anc, ok := scanner.ClickableAncestor(n).(*model.Node); ok && anc != nil {
				row = anc
			}
			if a.Detail == "" || model.FindFirst(row, model.Filter{Text: a.Detail}) != nil {
				return row
			}
		}
	}
	return nil
}

func (h *Host) collapse(ctx context.Context) {
	if _, err := h.c.Shell(ctx, "cmd statusbar collapse"); err != nil {
		h.c.log.Debug().Err(err).Msg("collapse shade")
	}
}
