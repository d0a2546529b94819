package server

import (
	"context"
	"testing"
	"time"

	"github.com/mj1618/luckydog/internal/model"
)

type countingDumper struct{ n int }

func (d *countingDumper) Dump(ctx context.Context) (*model.Hierarchy, error) {
	d.n++
	return &model.Hierarchy{}, nil
}

func TestTreeCache_TTL(t *testing.T) {
	now := time.Unix(1000, 0)
	c := NewTreeCache(500 * time.Millisecond)
	c.now = func() time.Time { return now }
	d := &countingDumper{}

	c.Dump(context.Background(), d)
	now = now.Add(100 * time.Millisecond)
	c.Dump(context.Background(), d)
	if d.n != 1 {
		t.Errorf("expected a cache hit, got %d dumps", d.n)
	}

	now = now.Add(time.Second)
	c.Dump(context.Background(), d)
	if d.n != 2 {
		t.Errorf("expected expiry, got %d dumps", d.n)
	}
}

func TestTreeCache_Disabled(t *testing.T) {
	c := NewTreeCache(0)
	d := &countingDumper{}
	c.Dump(context.Background(), d)
	c.Dump(context.Background(), d)
	if d.n != 2 {
		t.Errorf("ttl 0 should not cache, got %d dumps", d.n)
	}
}

func TestTreeCache_Invalidate(t *testing.T) {
	c := NewTreeCache(time.Hour)
	d := &countingDumper{}
	c.Dump(context.Background(), d)
	c.Invalidate()
	c.Dump(context.Background(), d)
	if d.n != 2 {
		t.Errorf("expected a fresh dump after invalidation, got %d", d.n)
	}
}
