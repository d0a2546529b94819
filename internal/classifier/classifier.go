// Package classifier maps screen events to the screen the target
// application is showing.
package classifier

import (
	"fmt"
	"strings"

	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/platform"
)

// Category is the kind of screen an event belongs to.
type Category int

const (
	Ignored Category = iota
	ChatSurface
	RewardDetail
	RewardPopup
)

func (c Category) String() string {
	switch c {
	case Ignored:
		return "ignored"
	case ChatSurface:
		return "chat"
	case RewardDetail:
		return "detail"
	case RewardPopup:
		return "popup"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText lets categories appear by name in yaml and json output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "ignored":
		return Ignored, nil
	case "chat":
		return ChatSurface, nil
	case "detail":
		return RewardDetail, nil
	case "popup":
		return RewardPopup, nil
	default:
		return Ignored, fmt.Errorf("unknown category: %q", s)
	}
}

// Classifier holds the identifiers that tell the screens apart.
type Classifier struct {
	Package        string
	DetailActivity string
	PopupActivity  string
}

// New builds a classifier from the target profile.
func New(t config.Target) Classifier {
	return Classifier{
		Package:        t.Package,
		DetailActivity: t.DetailActivity,
		PopupActivity:  t.PopupActivity,
	}
}

// Classify is a pure function of the event's package, class and type.
// Anything from the target package that is neither the detail page nor a
// popup window change is a chat surface.
func (c Classifier) Classify(ev platform.ScreenEvent) Category {
	if ev.Package == "" || ev.Package != c.Package {
		return Ignored
	}
	if ev.ClassName == c.DetailActivity {
		return RewardDetail
	}
	if ev.Type == platform.WindowStateChanged && ev.ClassName == c.PopupActivity {
		return RewardPopup
	}
	return ChatSurface
}
