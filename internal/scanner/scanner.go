// Package scanner searches a host UI tree for claimable red packets and
// dispatches clicks to the nearest clickable ancestor.
package scanner

import (
	"context"

	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/platform"
)

// Scanner holds the identifiers it searches for.
type Scanner struct {
	RewardViewID  string
	ClaimedViewID string
	ButtonClass   string
}

// New builds a scanner from the target profile.
func New(t config.Target) Scanner {
	return Scanner{
		RewardViewID:  t.RewardViewID,
		ClaimedViewID: t.ClaimedViewID,
		ButtonClass:   t.ButtonClass,
	}
}

// FindByViewID returns the first non-nil descendant of n with the given
// view id, or nil.
func FindByViewID(n platform.Node, id string) platform.Node {
	if n == nil {
		return nil
	}
	for _, m := range n.FindByViewID(id) {
		if m != nil {
			return m
		}
	}
	return nil
}

// FindUnclaimedReward walks the children of n depth-first and returns the
// first reward element whose enclosing child has no claimed marker.
//
// A child whose subtree holds a reward and a marker is not accepted as a
// whole: the search descends into it, so an unopened packet next to an
// opened one is still found.
func (s Scanner) FindUnclaimedReward(n platform.Node) platform.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if reward := FindByViewID(child, s.RewardViewID); reward != nil {
			if FindByViewID(child, s.ClaimedViewID) == nil {
				return reward
			}
		}
		if found := s.FindUnclaimedReward(child); found != nil {
			return found
		}
	}
	return nil
}

// FindButton returns the first descendant of n, in preorder, whose class is
// the button class.
func (s Scanner) FindButton(n platform.Node) platform.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if child.ClassName() == s.ButtonClass {
			return child
		}
		if found := s.FindButton(child); found != nil {
			return found
		}
	}
	return nil
}

// ClickableAncestor returns n or its nearest clickable ancestor, or nil when
// the chain reaches the root without one.
func ClickableAncestor(n platform.Node) platform.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Clickable() {
			return cur
		}
	}
	return nil
}

// DispatchClick clicks the nearest clickable node at or above n. It reports
// false with a nil error when nothing in the chain is clickable, and false
// with the host's error when the click itself fails.
func DispatchClick(ctx context.Context, c platform.Clicker, n platform.Node) (bool, error) {
	target := ClickableAncestor(n)
	if target == nil {
		return false, nil
	}
	if err := c.Click(ctx, target); err != nil {
		return false, err
	}
	return true, nil
}
