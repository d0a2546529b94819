package adb

import (
	"context"
	"time"

	"github.com/mj1618/luckydog/internal/platform"
	"golang.org/x/time/rate"
)

// NotificationClass is the class name carried by notification events, as
// the accessibility service reports it.
const NotificationClass = "android.app.Notification"

// Watcher turns periodic dumpsys snapshots into screen events.
//
// A change of resumed activity is a window-state change; an unchanged one
// is reported as a content change so chat screens are rescanned. Each new
// notification of the target package is reported once.
type Watcher struct {
	c       *Client
	pkg     string
	limiter *rate.Limiter

	activity string
	seen     map[string]bool
	primed   bool
	now      func() time.Time
}

var _ platform.EventSource = (*Watcher)(nil)

// NewWatcher polls at most once per interval for the target package.
func NewWatcher(c *Client, pkg string, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 300 * time.Millisecond
	}
	return &Watcher{
		c:       c,
		pkg:     pkg,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		seen:    map[string]bool{},
		now:     time.Now,
	}
}

// Events starts polling and returns the event stream. The channel is
// closed when ctx is done.
func (w *Watcher) Events(ctx context.Context) (<-chan platform.ScreenEvent, error) {
	ch := make(chan platform.ScreenEvent, 16)
	go func() {
		defer close(ch)
		for {
			if err := w.limiter.Wait(ctx); err != nil {
				return
			}
			for _, ev := range w.Poll(ctx) {
				select {
				case ch <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// Poll takes one snapshot and returns the events it implies. The first
// poll only records the notifications already posted.
func (w *Watcher) Poll(ctx context.Context) []platform.ScreenEvent {
	var events []platform.ScreenEvent
	now := w.now()

	out, err := w.c.Shell(ctx, "dumpsys activity activities")
	if err != nil {
		w.c.log.Debug().Err(err).Msg("dumpsys activity")
	} else if pkg, class := parseResumedActivity(out); class != "" {
		typ := platform.WindowContentChanged
		if class != w.activity {
			typ = platform.WindowStateChanged
			w.activity = class
		}
		events = append(events, platform.ScreenEvent{Package: pkg, Type: typ, ClassName: class, Time: now})
	}

	out, err = w.c.Shell(ctx, "dumpsys notification --noredact")
	if err != nil {
		w.c.log.Debug().Err(err).Msg("dumpsys notification")
		return events
	}
	for _, rec := range parseNotifications(out, w.pkg) {
		if w.seen[rec.Key] {
			continue
		}
		w.seen[rec.Key] = true
		if !w.primed {
			continue
		}
		label, detail := rec.Title, rec.Text
		if label == "" {
			label, detail = rec.Text, ""
		}
		events = append(events, platform.ScreenEvent{
			Package:   rec.Package,
			Type:      platform.NotificationStateChanged,
			ClassName: NotificationClass,
			Time:      now,
			Notification: &platform.Notification{
				Ticker: rec.Ticker,
				Open:   &platform.PendingAction{Key: rec.Key, Package: rec.Package, Text: label, Detail: detail},
			},
		})
	}
	w.primed = true
	return events
}
