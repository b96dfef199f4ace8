package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Storage.Backend != nil || cfg.History.Limit != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[storage]
backend = "redis"
redis-url = "redis://example:6379/2"

[history]
limit = 100
recent = 10

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend == nil || *cfg.Storage.Backend != "redis" {
		t.Fatalf("unexpected backend %v", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != nil {
		t.Fatalf("unset path should stay nil")
	}
	if cfg.History.Limit == nil || *cfg.History.Limit != 100 || *cfg.History.Recent != 10 {
		t.Fatalf("unexpected history config %+v", cfg.History)
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[storage]\nbakend = \"memory\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "bakend") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "tally", "config.toml") {
		t.Fatalf("config path %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "tally", "tally.db") {
		t.Fatalf("db path %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "tally", "tally.log") {
		t.Fatalf("log path %s", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewLoggerFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("key", "scoreTrackerPlayers"))
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "key=scoreTrackerPlayers") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestOpenLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tally.log")
	logger, closer, err := OpenLogger(path, "info")
	if err != nil {
		t.Fatalf("open logger: %v", err)
	}
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Fatalf("unexpected log file %q", data)
	}
}
