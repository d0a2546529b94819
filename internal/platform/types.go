package platform

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EventType is the category of a UI change notification.
type EventType int

const (
	WindowContentChanged EventType = iota
	WindowStateChanged
	NotificationStateChanged
)

func (t EventType) String() string {
	switch t {
	case WindowStateChanged:
		return "window-state-changed"
	case WindowContentChanged:
		return "window-content-changed"
	case NotificationStateChanged:
		return "notification-state-changed"
	default:
		return fmt.Sprintf("event-type(%d)", int(t))
	}
}

// MarshalText writes event types by name in yaml and json.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *EventType) UnmarshalText(b []byte) error {
	v, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseEventType converts a flag or payload value to an EventType.
func ParseEventType(s string) (EventType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "state", "window-state-changed", "state-changed":
		return WindowStateChanged, nil
	case "content", "window-content-changed", "content-changed", "":
		return WindowContentChanged, nil
	case "notification", "notification-state-changed":
		return NotificationStateChanged, nil
	default:
		return WindowContentChanged, fmt.Errorf("unknown event type: %q (expected state, content, or notification)", s)
	}
}

// PendingAction is an opaque deferred action carried by a notification.
// Only the host that produced it knows how to fire it.
type PendingAction struct {
	Key     string `yaml:"key,omitempty"     json:"key,omitempty"`
	Package string `yaml:"package,omitempty" json:"package,omitempty"`
	Text    string `yaml:"text,omitempty"    json:"text,omitempty"`
	// Detail is further text the notification shows, used to tell apart
	// notifications sharing the same Text.
	Detail  string `yaml:"detail,omitempty"  json:"detail,omitempty"`
}

// IsZero reports whether the action carries nothing to fire.
func (a PendingAction) IsZero() bool {
	return a.Key == "" && a.Text == ""
}

// Notification is the payload embedded in notification events.
type Notification struct {
	Ticker string         `yaml:"ticker"          json:"ticker"`
	Open   *PendingAction `yaml:"open,omitempty"  json:"open,omitempty"`
}

// ScreenEvent is one UI change reported by the host.
type ScreenEvent struct {
	Package      string        `yaml:"package"                json:"package"`
	Type         EventType     `yaml:"type"                   json:"type"`
	ClassName    string        `yaml:"class"                  json:"class"`
	Notification *Notification `yaml:"notification,omitempty" json:"notification,omitempty"`
	Time         time.Time     `yaml:"time"                   json:"time"`
}

// DeviceLister enumerates attached devices.
type DeviceLister interface {
	ListDevices(ctx context.Context) ([]Device, error)
}

// Device describes one attached device.
type Device struct {
	Serial string `yaml:"serial"          json:"serial"`
	State  string `yaml:"state"           json:"state"`
	Model  string `yaml:"model,omitempty" json:"model,omitempty"`
}

// ProviderOptions configures backend construction.
type ProviderOptions struct {
	ADBPath       string        // Path to the adb binary
	Serial        string        // Device serial ("" = the only attached device)
	TargetPackage string        // Package whose notifications the watcher reports
	WatchInterval time.Duration // Watcher polling interval
}
