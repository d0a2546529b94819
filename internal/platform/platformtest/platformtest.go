// Package platformtest provides in-memory nodes and a recording host for
// tests of code built on the platform interfaces.
package platformtest

import (
	"context"
	"sync"

	"github.com/mj1618/luckydog/internal/platform"
)

// Node is a hand-built tree node.
type Node struct {
	Class  string
	ID     string
	Text   string
	Click  bool
	Kids   []*Node
	parent *Node
}

var _ platform.Node = (*Node)(nil)

// N builds a node and links the given children to it.
func N(class, id string, clickable bool, kids ...*Node) *Node {
	n := &Node{Class: class, ID: id, Click: clickable, Kids: kids}
	for _, k := range kids {
		if k != nil {
			k.parent = n
		}
	}
	return n
}

// Group is a non-clickable container.
func Group(kids ...*Node) *Node {
	return N("android.widget.FrameLayout", "", false, kids...)
}

// Label is a non-clickable text view with a view id.
func Label(id, text string) *Node {
	n := N("android.widget.TextView", id, false)
	n.Text = text
	return n
}

// Button is a clickable android.widget.Button.
func Button(text string) *Node {
	n := N("android.widget.Button", "", true)
	n.Text = text
	return n
}

func (n *Node) ClassName() string { return n.Class }
func (n *Node) ViewID() string    { return n.ID }
func (n *Node) Clickable() bool   { return n.Click }
func (n *Node) ChildCount() int   { return len(n.Kids) }

func (n *Node) Child(i int) platform.Node {
	if i < 0 || i >= len(n.Kids) || n.Kids[i] == nil {
		return nil
	}
	return n.Kids[i]
}

func (n *Node) Parent() platform.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) FindByViewID(id string) []platform.Node {
	var out []platform.Node
	var walk func(*Node)
	walk = func(c *Node) {
		for _, k := range c.Kids {
			if k == nil {
				continue
			}
			if k.ID == id {
				out = append(out, k)
			}
			walk(k)
		}
	}
	walk(n)
	return out
}

// Host records every action issued against it. Root serves the snapshot for
// each RootInActiveWindow call; the argument is the 1-based call number.
type Host struct {
	mu sync.Mutex

	Root      func(call int) platform.Node
	RootErr   error
	ClickErr  error
	BackErr   error
	InvokeErr error

	RootCalls int
	Clicks    []platform.Node
	Backs     int
	Invoked   []platform.PendingAction
}

var _ platform.Host = (*Host)(nil)

// Static returns a host that always serves root.
func Static(root platform.Node) *Host {
	return &Host{Root: func(int) platform.Node { return root }}
}

func (h *Host) RootInActiveWindow(ctx context.Context) (platform.Node, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.RootCalls++
	if h.RootErr != nil {
		return nil, h.RootErr
	}
	if h.Root == nil {
		return nil, nil
	}
	return h.Root(h.RootCalls), nil
}

func (h *Host) Click(ctx context.Context, n platform.Node) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Clicks = append(h.Clicks, n)
	return h.ClickErr
}

func (h *Host) GlobalBack(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Backs++
	return h.BackErr
}

func (h *Host) InvokePending(ctx context.Context, a platform.PendingAction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Invoked = append(h.Invoked, a)
	return h.InvokeErr
}

// Actions returns the total number of actions issued.
func (h *Host) Actions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.Clicks) + h.Backs + len(h.Invoked)
}
