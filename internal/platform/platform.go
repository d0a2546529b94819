package platform

import "context"

// Node is a read-only handle into the foreign application's widget tree.
// Implementations are owned by the host and must not be held across events.
type Node interface {
	// ClassName returns the widget class, e.g. "android.widget.Button".
	ClassName() string
	// ViewID returns the stable resource id, or "" when absent.
	ViewID() string
	Clickable() bool
	ChildCount() int
	// Child returns the i-th child, or nil if it is no longer available.
	Child(i int) Node
	// Parent returns nil at the root.
	Parent() Node
	// FindByViewID returns the descendants whose view id equals id.
	FindByViewID(id string) []Node
}

// Clicker performs a click action on a node.
type Clicker interface {
	Click(ctx context.Context, n Node) error
}

// Host is the capability surface the claim engine depends on.
type Host interface {
	Clicker

	// RootInActiveWindow returns the current root of the active window.
	// A nil node with a nil error means no window is available.
	RootInActiveWindow(ctx context.Context) (Node, error)

	// GlobalBack performs the system "navigate back" action.
	GlobalBack(ctx context.Context) error

	// InvokePending fires a deferred action attached to a notification.
	InvokePending(ctx context.Context, action PendingAction) error
}

// EventSource produces screen events until ctx is cancelled.
type EventSource interface {
	Events(ctx context.Context) (<-chan ScreenEvent, error)
}
