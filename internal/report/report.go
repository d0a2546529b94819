// Package report carries the outcome of every action the claimer takes.
package report

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/rs/zerolog"
)

// Action names what the claimer did.
type Action string

const (
	ActionClickReward      Action = "click-reward"
	ActionClickButton      Action = "click-button"
	ActionBack             Action = "back"
	ActionOpenNotification Action = "open-notification"
	ActionPopupTimeout     Action = "popup-timeout"
)

// Record is one action attempt.
type Record struct {
	ID       string    `yaml:"id"                json:"id"`
	Time     time.Time `yaml:"time"              json:"time"`
	Package  string    `yaml:"package"           json:"package"`
	Class    string    `yaml:"class"             json:"class"`
	Category string    `yaml:"category"          json:"category"`
	Action   Action    `yaml:"action"            json:"action"`
	Target   string    `yaml:"target,omitempty"  json:"target,omitempty"`
	Polls    int       `yaml:"polls,omitempty"   json:"polls,omitempty"`
	OK       bool      `yaml:"ok"                json:"ok"`
	Error    string    `yaml:"error,omitempty"   json:"error,omitempty"`
}

// NewRecord stamps a record for an event.
func NewRecord(ev platform.ScreenEvent, category string, action Action) Record {
	return Record{
		ID:       uuid.New().String(),
		Time:     time.Now(),
		Package:  ev.Package,
		Class:    ev.ClassName,
		Category: category,
		Action:   action,
	}
}

// Sink receives records. Implementations must not block for long: they
// are called on the event-handling goroutine.
type Sink interface {
	Report(r Record)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record)

func (f SinkFunc) Report(r Record) { f(r) }

// Multi fans a record out to several sinks.
type Multi []Sink

func (m Multi) Report(r Record) {
	for _, s := range m {
		if s != nil {
			s.Report(r)
		}
	}
}

// LogSink writes records to a logger.
type LogSink struct {
	Log zerolog.Logger
}

func (l LogSink) Report(r Record) {
	ev := l.Log.Info()
	if !r.OK {
		ev = l.Log.Warn()
	}
	ev = ev.Str("id", r.ID).
		Str("action", string(r.Action)).
		Str("category", r.Category).
		Str("class", r.Class).
		Bool("ok", r.OK)
	if r.Target != "" {
		ev = ev.Str("target", r.Target)
	}
	if r.Polls > 0 {
		ev = ev.Int("polls", r.Polls)
	}
	if r.Error != "" {
		ev = ev.Str("error", r.Error)
	}
	ev.Msg("action")
}

// Stats counts events and actions. Safe for concurrent readers.
type Stats struct {
	events   atomic.Int64
	ignored  atomic.Int64
	claims   atomic.Int64
	rewards  atomic.Int64
	backs    atomic.Int64
	opened   atomic.Int64
	timeouts atomic.Int64
	failures atomic.Int64

	mu         sync.Mutex
	started    time.Time
	lastAction *Record
}

// NewStats starts the uptime clock.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// ObserveEvent counts one handled event.
func (s *Stats) ObserveEvent(ignored bool) {
	s.events.Add(1)
	if ignored {
		s.ignored.Add(1)
	}
}

func (s *Stats) Report(r Record) {
	if !r.OK {
		if r.Action == ActionPopupTimeout {
			s.timeouts.Add(1)
		} else {
			s.failures.Add(1)
		}
	} else {
		switch r.Action {
		case ActionClickButton:
			s.claims.Add(1)
		case ActionClickReward:
			s.rewards.Add(1)
		case ActionBack:
			s.backs.Add(1)
		case ActionOpenNotification:
			s.opened.Add(1)
		}
	}
	s.mu.Lock()
	rc := r
	s.lastAction = &rc
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Uptime        string  `yaml:"uptime"                json:"uptime"`
	Events        int64   `yaml:"events"                json:"events"`
	Ignored       int64   `yaml:"ignored"               json:"ignored"`
	Claims        int64   `yaml:"claims"                json:"claims"`
	RewardClicks  int64   `yaml:"reward_clicks"         json:"reward_clicks"`
	Backs         int64   `yaml:"backs"                 json:"backs"`
	Notifications int64   `yaml:"notifications_opened"  json:"notifications_opened"`
	PopupTimeouts int64   `yaml:"popup_timeouts"        json:"popup_timeouts"`
	Failures      int64   `yaml:"failures"              json:"failures"`
	LastAction    *Record `yaml:"last_action,omitempty" json:"last_action,omitempty"`
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	var last *Record
	if s.lastAction != nil {
		rc := *s.lastAction
		last = &rc
	}
	started := s.started
	s.mu.Unlock()

	snap := Snapshot{
		Events:        s.events.Load(),
		Ignored:       s.ignored.Load(),
		Claims:        s.claims.Load(),
		RewardClicks:  s.rewards.Load(),
		Backs:         s.backs.Load(),
		Notifications: s.opened.Load(),
		PopupTimeouts: s.timeouts.Load(),
		Failures:      s.failures.Load(),
		LastAction:    last,
	}
	if !started.IsZero() {
		snap.Uptime = time.Since(started).Round(time.Second).String()
	}
	return snap
}
