package model

import "strings"

// Filter selects nodes by id, class, role and text. Empty fields match
// everything; set fields must all match.
type Filter struct {
	ViewID        string
	Class         string
	Roles         []string
	Text          string // case-insensitive substring of text or content-desc
	Exact         bool   // require Text to equal the label instead
	ClickableOnly bool
}

// IsEmpty reports whether the filter has no criteria.
func (f Filter) IsEmpty() bool {
	return f.ViewID == "" && f.Class == "" && len(f.Roles) == 0 && f.Text == "" && !f.ClickableOnly
}

// Match reports whether a single node satisfies every criterion.
func (f Filter) Match(n *Node) bool {
	if f.ViewID != "" && n.ResourceID != f.ViewID {
		return false
	}
	if f.Class != "" && n.Class != f.Class {
		return false
	}
	if f.ClickableOnly && !n.IsClickable {
		return false
	}
	if len(f.Roles) > 0 {
		role := MapRole(n.Class)
		found := false
		for _, r := range f.Roles {
			if r == role {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Text != "" && !textMatches(n, f.Text, f.Exact) {
		return false
	}
	return true
}

func textMatches(n *Node, text string, exact bool) bool {
	if exact {
		return strings.EqualFold(n.Text, text) || strings.EqualFold(n.ContentDesc, text)
	}
	textLower := strings.ToLower(text)
	return strings.Contains(strings.ToLower(n.Text), textLower) ||
		strings.Contains(strings.ToLower(n.ContentDesc), textLower)
}

// FindAll returns every node in the subtree matching f, in preorder.
func FindAll(root *Node, f Filter) []*Node {
	if root == nil {
		return nil
	}
	var out []*Node
	root.walk(func(n *Node) bool {
		if f.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirst returns the first node in preorder matching f, or nil.
func FindFirst(root *Node, f Filter) *Node {
	if root == nil {
		return nil
	}
	var found *Node
	root.walk(func(n *Node) bool {
		if f.Match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}
