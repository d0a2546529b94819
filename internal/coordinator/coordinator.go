// Package coordinator turns classified screen events into host actions:
// back out of the detail page, poll the popup for its open button, and
// click unclaimed packets or packet notifications on chat surfaces.
package coordinator

import (
	"context"
	"strings"
	"time"

	"github.com/mj1618/luckydog/internal/classifier"
	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/mj1618/luckydog/internal/scanner"
	"github.com/rs/zerolog"
)

// Coordinator handles one event at a time. It is not safe for concurrent
// OnEvent calls; the runner feeds it from a single goroutine.
type Coordinator struct {
	host       platform.Host
	classifier classifier.Classifier
	scanner    scanner.Scanner

	keyword  string
	sep      string
	attempts int
	interval time.Duration

	// Sleep waits between popup polls. Tests replace it.
	Sleep func(time.Duration)
	// Sink receives a record for every action attempted. May be nil.
	Sink report.Sink
	// Stats counts events and actions. May be nil.
	Stats *report.Stats
	Log   zerolog.Logger
}

// New builds a coordinator acting on host with the given profile.
func New(host platform.Host, cfg config.Config) *Coordinator {
	return &Coordinator{
		host:       host,
		classifier: classifier.New(cfg.Target),
		scanner:    scanner.New(cfg.Target),
		keyword:    cfg.Target.Keyword,
		sep:        cfg.Target.TickerSep,
		attempts:   cfg.Poll.Attempts,
		interval:   cfg.Poll.Interval,
		Sleep:      time.Sleep,
		Log:        logging.For("coordinator"),
	}
}

// Classify exposes the coordinator's classification without acting on it.
func (c *Coordinator) Classify(ev platform.ScreenEvent) classifier.Category {
	return c.classifier.Classify(ev)
}

// OnEvent handles one screen event to completion. Host failures are logged
// and reported, never returned.
func (c *Coordinator) OnEvent(ctx context.Context, ev platform.ScreenEvent) {
	cat := c.classifier.Classify(ev)
	if c.Stats != nil {
		c.Stats.ObserveEvent(cat == classifier.Ignored)
	}
	log := c.Log.With().Str("category", cat.String()).Str("class", ev.ClassName).Logger()
	log.Debug().Str("type", ev.Type.String()).Msg("event")

	switch cat {
	case classifier.Ignored:
		return
	case classifier.RewardDetail:
		c.handleDetail(ctx, ev, log)
	case classifier.RewardPopup:
		c.handlePopup(ctx, ev, log)
	default:
		c.handleChat(ctx, ev, log)
	}
}

func (c *Coordinator) handleDetail(ctx context.Context, ev platform.ScreenEvent, log zerolog.Logger) {
	r := report.NewRecord(ev, classifier.RewardDetail.String(), report.ActionBack)
	if err := c.host.GlobalBack(ctx); err != nil {
		log.Warn().Err(err).Msg("back failed")
		r.Error = err.Error()
	} else {
		r.OK = true
	}
	c.emit(r)
}

// handlePopup polls for the open button until it is clicked once, the
// attempt or time budget runs out or ctx is done. The popup animates in,
// so the button is usually absent from the first snapshots.
func (c *Coordinator) handlePopup(parent context.Context, ev platform.ScreenEvent, log zerolog.Logger) {
	ctx := parent
	// Snapshots can be far slower than the interval, so the wait is also
	// bounded in time.
	if budget := c.budget(); budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, budget)
		defer cancel()
	}

	claimed := false
	polls := 0
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if claimed || ctx.Err() != nil {
			break
		}
		polls++
		root, err := c.host.RootInActiveWindow(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			lastErr = err
			log.Debug().Err(err).Int("poll", polls).Msg("snapshot failed")
		} else if btn := c.scanner.FindButton(root); btn != nil {
			ok, err := scanner.DispatchClick(ctx, c.host, btn)
			switch {
			case err != nil:
				if lastErr == nil {
					log.Warn().Err(err).Int("poll", polls).Msg("button click failed")
				}
				lastErr = err
			case ok:
				claimed = true
				r := report.NewRecord(ev, classifier.RewardPopup.String(), report.ActionClickButton)
				r.Target = describe(btn)
				r.Polls = polls
				r.OK = true
				c.emit(r)
				continue
			}
		}
		c.Sleep(c.interval)
	}
	if claimed {
		return
	}
	if parent.Err() != nil {
		log.Debug().Int("polls", polls).Msg("popup wait cancelled")
		return
	}
	r := report.NewRecord(ev, classifier.RewardPopup.String(), report.ActionPopupTimeout)
	r.Polls = polls
	if lastErr != nil {
		r.Error = lastErr.Error()
	}
	c.emit(r)
}

// budget is the total time the popup wait may take, or 0 for no limit.
func (c *Coordinator) budget() time.Duration {
	if c.attempts <= 0 || c.interval <= 0 {
		return 0
	}
	return time.Duration(c.attempts) * c.interval
}

func (c *Coordinator) handleChat(ctx context.Context, ev platform.ScreenEvent, log zerolog.Logger) {
	root, err := c.host.RootInActiveWindow(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot failed")
	} else if reward := c.scanner.FindUnclaimedReward(root); reward != nil {
		r := report.NewRecord(ev, classifier.ChatSurface.String(), report.ActionClickReward)
		r.Target = describe(reward)
		ok, err := scanner.DispatchClick(ctx, c.host, reward)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("reward click failed")
			r.Error = err.Error()
			c.emit(r)
		case ok:
			r.OK = true
			c.emit(r)
		default:
			log.Debug().Str("target", r.Target).Msg("reward has no clickable ancestor")
		}
	}

	if ev.Notification != nil {
		c.handleNotification(ctx, ev, log)
	}
}

// handleNotification opens a notification whose ticker reads
// "<sender><sep><message>" and whose message mentions the keyword.
func (c *Coordinator) handleNotification(ctx context.Context, ev platform.ScreenEvent, log zerolog.Logger) {
	n := ev.Notification
	if !TickerMatches(n.Ticker, c.sep, c.keyword) {
		return
	}
	if n.Open == nil {
		log.Debug().Str("ticker", n.Ticker).Msg("packet notification without an action")
		return
	}

	r := report.NewRecord(ev, classifier.ChatSurface.String(), report.ActionOpenNotification)
	r.Target = n.Ticker
	if err := c.host.InvokePending(ctx, *n.Open); err != nil {
		log.Warn().Err(err).Msg("open notification failed")
		r.Error = err.Error()
	} else {
		r.OK = true
	}
	c.emit(r)
}

// TickerMatches reports whether the message part of a notification ticker
// mentions keyword. A ticker without a separator never matches.
func TickerMatches(ticker, sep, keyword string) bool {
	parts := strings.Split(ticker, sep)
	if len(parts) < 2 {
		return false
	}
	return strings.Contains(strings.TrimSpace(parts[1]), keyword)
}

func (c *Coordinator) emit(r report.Record) {
	if c.Stats != nil {
		c.Stats.Report(r)
	}
	if c.Sink != nil {
		c.Sink.Report(r)
	}
}

func describe(n platform.Node) string {
	if id := n.ViewID(); id != "" {
		return id
	}
	return n.ClassName()
}
