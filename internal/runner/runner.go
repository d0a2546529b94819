// Package runner feeds screen events from every source into one
// coordinator, one event at a time.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/coordinator"
	"github.com/mj1618/luckydog/internal/logging"
	"github.com/mj1618/luckydog/internal/platform"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/rs/zerolog"
)

// Runner owns the dispatch loop. Sources only send on channels; every
// OnEvent call and every coordinator rebuild happens on the goroutine
// that called Run.
type Runner struct {
	Host    platform.Host
	Sources []platform.EventSource
	Config  config.Config

	// ConfigPath is watched for edits when set. Reloads take effect
	// between events.
	ConfigPath string
	// OnReload is called on the dispatch goroutine after a reload.
	OnReload func(config.Config)

	Sink  report.Sink
	Stats *report.Stats
	Log   zerolog.Logger

	// build is replaced in tests.
	build func(platform.Host, config.Config) *coordinator.Coordinator
}

// New returns a runner with the default coordinator factory.
func New(host platform.Host, cfg config.Config, sources ...platform.EventSource) *Runner {
	return &Runner{
		Host:    host,
		Sources: sources,
		Config:  cfg,
		Log:     logging.For("runner"),
		build:   coordinator.New,
	}
}

func (r *Runner) newCoordinator(cfg config.Config) *coordinator.Coordinator {
	c := r.build(r.Host, cfg)
	c.Sink = r.Sink
	c.Stats = r.Stats
	return c
}

// Run dispatches events until ctx is done or every source has closed.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := make(chan platform.ScreenEvent)
	var wg sync.WaitGroup
	for _, src := range r.Sources {
		ch, err := src.Events(ctx)
		if err != nil {
			return fmt.Errorf("start event source: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			forward(ctx, ch, merged)
		}()
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	reloads := make(chan config.Config, 1)
	if r.ConfigPath != "" {
		go func() {
			err := config.Watch(ctx, r.ConfigPath, func(c config.Config) {
				// keep only the newest pending config
				select {
				case <-reloads:
				default:
				}
				reloads <- c
			})
			if err != nil {
				r.Log.Warn().Err(err).Msg("config watch stopped")
			}
		}()
	}

	coord := r.newCoordinator(r.Config)
	r.Log.Info().Int("sources", len(r.Sources)).Str("package", r.Config.Target.Package).Msg("dispatching")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-merged:
			if !ok {
				r.Log.Info().Msg("all event sources closed")
				return nil
			}
			coord.OnEvent(ctx, ev)
		case cfg := <-reloads:
			r.Config = cfg
			coord = r.newCoordinator(cfg)
			if r.OnReload != nil {
				r.OnReload(cfg)
			}
			r.Log.Info().Str("package", cfg.Target.Package).Msg("coordinator rebuilt")
		}
	}
}

func forward(ctx context.Context, in <-chan platform.ScreenEvent, out chan<- platform.ScreenEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
