package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dataPath, content string) string {
	t.Helper()
	path := filepath.Join(dataPath, ".intervals", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir, "")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.StateDir != filepath.Join(dir, ".intervals") {
		t.Fatalf("unexpected state dir %q", cfg.StateDir)
	}
	if cfg.Sync.SendTimeout != DefaultSendTimeout || cfg.Sync.Merge != MergeUpsert {
		t.Fatalf("unexpected sync defaults: %+v", cfg.Sync)
	}
	if cfg.Playback.Tick != DefaultTick {
		t.Fatalf("tick = %s, want %s", cfg.Playback.Tick, DefaultTick)
	}
}

func TestNewReadsYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
log:
  level: debug
sync:
  send_timeout: 5s
  merge: append
  listen_addrs: ["/ip4/127.0.0.1/tcp/4010"]
playback:
  tick: 500ms
  sound: true
`)
	cfg, err := New(dir, "")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level = %q", cfg.Log.Level)
	}
	if cfg.Sync.SendTimeout != 5*time.Second {
		t.Errorf("sync.send_timeout = %s", cfg.Sync.SendTimeout)
	}
	if cfg.Sync.Merge != MergeAppend {
		t.Errorf("sync.merge = %q", cfg.Sync.Merge)
	}
	if len(cfg.Sync.ListenAddrs) != 1 || cfg.Sync.ListenAddrs[0] != "/ip4/127.0.0.1/tcp/4010" {
		t.Errorf("sync.listen_addrs = %v", cfg.Sync.ListenAddrs)
	}
	if cfg.Playback.Tick != 500*time.Millisecond || !cfg.Playback.Sound {
		t.Errorf("playback = %+v", cfg.Playback)
	}
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sync:\n  merge: append\n")
	t.Setenv("INTERVALS_SYNC_MERGE", "upsert")
	t.Setenv("INTERVALS_PLAYBACK_TICK", "100ms")
	cfg, err := New(dir, "")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Sync.Merge != MergeUpsert {
		t.Errorf("env override for merge not applied: %q", cfg.Sync.Merge)
	}
	if cfg.Playback.Tick != 100*time.Millisecond {
		t.Errorf("env override for tick not applied: %s", cfg.Playback.Tick)
	}
}

func TestExplicitMissingFileFails(t *testing.T) {
	t.Parallel()
	_, err := New(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidationRejectsBadValues(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"merge":   "sync:\n  merge: replace\n",
		"tick":    "playback:\n  tick: 2s\n",
		"timeout": "sync:\n  send_timeout: 0s\n",
		"level":   "log:\n  level: loud\n",
	}
	for name, body := range cases {
		name, body := name, body
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, body)
			_, err := New(dir, "")
			if err == nil || !strings.Contains(err.Error(), "config validation") {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNewRequiresDataPath(t *testing.T) {
	t.Parallel()
	if _, err := New("", ""); err == nil {
		t.Fatal("expected error for empty data path")
	}
}

func TestWithLogLevelValidatesOverride(t *testing.T) {
	cfg, err := New(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	debug, err := cfg.WithLogLevel("debug")
	if err != nil {
		t.Fatalf("valid override: %v", err)
	}
	if debug.Log.Level != "debug" || cfg.Log.Level != "info" {
		t.Fatalf("override must apply to the copy only: %q %q", debug.Log.Level, cfg.Log.Level)
	}
	if _, err := cfg.WithLogLevel("verbose"); err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Fatalf("expected log.level validation error, got %v", err)
	}
}
