package model

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mj1618/luckydog/internal/platform"
)

// Node is one element of a `uiautomator dump` hierarchy.
type Node struct {
	Index       int     `xml:"index,attr"        yaml:"-"                json:"-"`
	Text        string  `xml:"text,attr"         yaml:"text,omitempty"   json:"text,omitempty"`
	ResourceID  string  `xml:"resource-id,attr"  yaml:"id,omitempty"     json:"id,omitempty"`
	Class       string  `xml:"class,attr"        yaml:"class"            json:"class"`
	Package     string  `xml:"package,attr"      yaml:"-"                json:"-"`
	ContentDesc string  `xml:"content-desc,attr" yaml:"desc,omitempty"   json:"desc,omitempty"`
	IsClickable bool    `xml:"clickable,attr"    yaml:"click,omitempty"  json:"click,omitempty"`
	Enabled     bool    `xml:"enabled,attr"      yaml:"-"                json:"-"`
	Focused     bool    `xml:"focused,attr"      yaml:"focus,omitempty"  json:"focus,omitempty"`
	Selected    bool    `xml:"selected,attr"     yaml:"sel,omitempty"    json:"sel,omitempty"`
	Bounds      string  `xml:"bounds,attr"       yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Nodes       []*Node `xml:"node"              yaml:"nodes,omitempty"  json:"nodes,omitempty"`

	parent *Node
}

var _ platform.Node = (*Node)(nil)

func (n *Node) ClassName() string { return n.Class }
func (n *Node) ViewID() string    { return n.ResourceID }
func (n *Node) Clickable() bool   { return n.IsClickable }
func (n *Node) ChildCount() int   { return len(n.Nodes) }

func (n *Node) Child(i int) platform.Node {
	if i < 0 || i >= len(n.Nodes) || n.Nodes[i] == nil {
		return nil
	}
	return n.Nodes[i]
}

func (n *Node) Parent() platform.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// FindByViewID collects the descendants whose resource id equals id, in
// preorder. The receiver itself is not a candidate.
func (n *Node) FindByViewID(id string) []platform.Node {
	if id == "" {
		return nil
	}
	var out []platform.Node
	n.walk(func(c *Node) bool {
		if c != n && c.ResourceID == id {
			out = append(out, c)
		}
		return true
	})
	return out
}

// walk visits the subtree in preorder until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Nodes {
		if c == nil {
			continue
		}
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// Label returns the most descriptive text of the node.
func (n *Node) Label() string {
	if n.Text != "" {
		return n.Text
	}
	return n.ContentDesc
}

// Hierarchy is the top-level document of a `uiautomator dump`.
type Hierarchy struct {
	XMLName  xml.Name `xml:"hierarchy"`
	Rotation int      `xml:"rotation,attr"`
	Nodes    []*Node  `xml:"node"`

	root *Node
}

// ParseHierarchy decodes a dump. Any noise adb prints around the XML
// document is stripped first.
func ParseHierarchy(data []byte) (*Hierarchy, error) {
	s := string(data)
	if i := strings.Index(s, "<?xml"); i > 0 {
		s = s[i:]
	} else if i < 0 {
		if j := strings.Index(s, "<hierarchy"); j >= 0 {
			s = s[j:]
		}
	}
	if i := strings.LastIndex(s, "</hierarchy>"); i >= 0 {
		s = s[:i+len("</hierarchy>")]
	}

	var h Hierarchy
	if err := xml.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}
	h.link()
	return &h, nil
}

func (h *Hierarchy) link() {
	if len(h.Nodes) == 1 {
		h.root = h.Nodes[0]
	} else if len(h.Nodes) > 1 {
		h.root = &Node{Class: "hierarchy", Nodes: h.Nodes}
	}
	if h.root == nil {
		return
	}
	h.root.walk(func(n *Node) bool {
		for _, c := range n.Nodes {
			if c != nil {
				c.parent = n
			}
		}
		return true
	})
}

// Root returns the single root of the dump; several top-level windows are
// wrapped in a synthetic non-clickable container. Nil for an empty dump.
func (h *Hierarchy) Root() *Node {
	return h.root
}

// Bounds is a screen rectangle in uiautomator's corner form.
type Bounds struct {
	X1, Y1, X2, Y2 int
}

var boundsPattern = regexp.MustCompile(`\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]`)

// ParseBounds parses "[x1,y1][x2,y2]".
func ParseBounds(s string) (Bounds, error) {
	m := boundsPattern.FindStringSubmatch(s)
	if len(m) != 5 {
		return Bounds{}, fmt.Errorf("invalid bounds %q: expected [x1,y1][x2,y2]", s)
	}
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid bounds %q: %w", s, err)
		}
		v[i] = n
	}
	return Bounds{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

// Center returns the midpoint of the rectangle.
func (b Bounds) Center() (int, int) {
	return b.X1 + (b.X2-b.X1)/2, b.Y1 + (b.Y2-b.Y1)/2
}

// Empty reports whether the rectangle has no area.
func (b Bounds) Empty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Rect returns the bounds as [x, y, width, height].
func (b Bounds) Rect() [4]int {
	return [4]int{b.X1, b.Y1, b.X2 - b.X1, b.Y2 - b.Y1}
}
