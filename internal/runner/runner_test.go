package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mj1618/luckydog/internal/config"
	"github.com/mj1618/luckydog/internal/coordinator"
	"github.com/mj1618/luckydog/internal/platform"
	pt "github.com/mj1618/luckydog/internal/platform/platformtest"
	"github.com/mj1618/luckydog/internal/report"
	"github.com/rs/zerolog"
)

// chanSource serves a channel the test controls.
type chanSource struct {
	ch  chan platform.ScreenEvent
	err error
}

func (s chanSource) Events(ctx context.Context) (<-chan platform.ScreenEvent, error) {
	return s.ch, s.err
}

// closedSource emits the given events and closes.
func closedSource(evs ...platform.ScreenEvent) chanSource {
	ch := make(chan platform.ScreenEvent, len(evs))
	for _, ev := range evs {
		ch <- ev
	}
	close(ch)
	return chanSource{ch: ch}
}

func detailEvent(pkg string) platform.ScreenEvent {
	return platform.ScreenEvent{Package: pkg, ClassName: config.DefaultDetailActivity}
}

func testRunner(host platform.Host, sources ...platform.EventSource) *Runner {
	r := New(host, config.Default(), sources...)
	r.Log = zerolog.Nop()
	r.build = func(h platform.Host, cfg config.Config) *coordinator.Coordinator {
		c := coordinator.New(h, cfg)
		c.Log = zerolog.Nop()
		c.Sleep = func(time.Duration) {}
		return c
	}
	return r
}

func TestRun_DispatchesAllSources(t *testing.T) {
	host := &pt.Host{}
	r := testRunner(host,
		closedSource(detailEvent(config.DefaultPackage), detailEvent("com.other")),
		closedSource(detailEvent(config.DefaultPackage)),
	)
	r.Stats = report.NewStats()

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if host.Backs != 2 {
		t.Errorf("expected 2 backs, got %d", host.Backs)
	}
	snap := r.Stats.Snapshot()
	if snap.Events != 3 || snap.Ignored != 1 || snap.Backs != 2 {
		t.Errorf("unexpected stats: %+v", snap)
	}
}

func TestRun_SinkReceivesRecords(t *testing.T) {
	var got []report.Record
	r := testRunner(&pt.Host{}, closedSource(detailEvent(config.DefaultPackage)))
	r.Sink = report.SinkFunc(func(rec report.Record) { got = append(got, rec) })

	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Action != report.ActionBack {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestRun_SourceError(t *testing.T) {
	r := testRunner(&pt.Host{}, chanSource{err: errors.New("adb not found")})
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	r := testRunner(&pt.Host{}, chanSource{ch: make(chan platform.ScreenEvent)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ReloadRebuildsCoordinator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "luckydog.yaml")
	if err := os.WriteFile(path, []byte("target:\n  package: com.tencent.mm\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	host := &pt.Host{}
	src := chanSource{ch: make(chan platform.ScreenEvent)}
	r := testRunner(host, src)
	r.ConfigPath = path
	reloaded := make(chan config.Config, 8)
	r.OnReload = func(c config.Config) {
		select {
		case reloaded <- c:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// The watcher starts asynchronously, so keep replacing the file until
	// it notices. Rename keeps readers from seeing a truncated file.
	deadline := time.After(5 * time.Second)
	tmp := filepath.Join(dir, "next.yaml")
	var cfg config.Config
wait:
	for {
		if err := os.WriteFile(tmp, []byte("target:\n  package: com.example.chat\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Rename(tmp, path); err != nil {
			t.Fatal(err)
		}
		select {
		case cfg = <-reloaded:
			if cfg.Target.Package == "com.example.chat" {
				break wait
			}
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}

	src.ch <- detailEvent(config.DefaultPackage)
	src.ch <- detailEvent("com.example.chat")
	// a third send returns only once the dispatch loop has taken the second
	src.ch <- detailEvent(config.DefaultPackage)
	cancel()
	<-done

	if host.Backs != 1 {
		t.Errorf("only the reloaded package should be handled, got %d backs", host.Backs)
	}
}
