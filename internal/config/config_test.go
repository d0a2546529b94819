package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Poll.Attempts != 1000 || cfg.Poll.Interval != 5*time.Millisecond {
		t.Errorf("poll budget: got %d x %s", cfg.Poll.Attempts, cfg.Poll.Interval)
	}
	if cfg.Target.Package != "com.tencent.mm" {
		t.Errorf("package: got %q", cfg.Target.Package)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "luckydog.yaml", `
target:
  reward_view_id: com.tencent.mm:id/b4q
poll:
  attempts: 200
  interval: 10ms
adb:
  serial: emulator-5554
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Target.RewardViewID != "com.tencent.mm:id/b4q" {
		t.Errorf("reward id: got %q", cfg.Target.RewardViewID)
	}
	if cfg.Target.ClaimedViewID != DefaultClaimedViewID {
		t.Errorf("unset fields should keep defaults, got %q", cfg.Target.ClaimedViewID)
	}
	if cfg.Poll.Attempts != 200 || cfg.Poll.Interval != 10*time.Millisecond {
		t.Errorf("poll: got %d x %s", cfg.Poll.Attempts, cfg.Poll.Interval)
	}
	if cfg.ADB.Serial != "emulator-5554" {
		t.Errorf("serial: got %q", cfg.ADB.Serial)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MQTT_BROKER", "broker.local")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("LUCKYDOG_SERIAL", "R58M123")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MQTT.Broker != "broker.local" || cfg.MQTT.Port != 8883 {
		t.Errorf("mqtt: got %s:%d", cfg.MQTT.Broker, cfg.MQTT.Port)
	}
	if cfg.ADB.Serial != "R58M123" {
		t.Errorf("serial: got %q", cfg.ADB.Serial)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "poll: [1, 2")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no package", func(c *Config) { c.Target.Package = "" }},
		{"no keyword", func(c *Config) { c.Target.Keyword = "" }},
		{"no separator", func(c *Config) { c.Target.TickerSep = "" }},
		{"zero attempts", func(c *Config) { c.Poll.Attempts = 0 }},
		{"negative interval", func(c *Config) { c.Poll.Interval = -time.Millisecond }},
		{"bad mqtt port", func(c *Config) { c.MQTT.Broker = "x"; c.MQTT.Port = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "luckydog.yaml", "poll:\n  attempts: 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "luckydog.yaml", "poll:\n  attempts: 20\n")

	// A truncating write can surface an intermediate empty file first.
	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case cfg := <-got:
			reloaded = cfg.Poll.Attempts == 20
		case <-timeout:
			t.Fatal("no reload with attempts=20 observed")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
