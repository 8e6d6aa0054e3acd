package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func envMap(m map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	res := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if res.Found || res.ParseError != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Config.Grace() != 2*time.Hour {
		t.Fatalf("grace = %v", res.Config.Grace())
	}
	if !res.Config.SelfieRequired() {
		t.Fatal("selfie should be required by default")
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[challenge]
grace_window = "90m"
require_selfie = false

[user]
name = "Sam"

[leaderboard]
url = "https://board.example.com"
`)
	res := Load(path)
	if !res.Found || res.ParseError != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	c := res.Config
	if c.Grace() != 90*time.Minute {
		t.Fatalf("grace = %v", c.Grace())
	}
	if c.SelfieRequired() {
		t.Fatal("selfie should be disabled")
	}
	if c.User.Name != "Sam" || c.Leaderboard.URL != "https://board.example.com" {
		t.Fatalf("unexpected config %+v", c)
	}
	// Untouched keys keep their defaults.
	if c.Challenge.CheckInterval.Std() != time.Minute || c.Leaderboard.ListenAddr != ":8075" {
		t.Fatalf("defaults lost: %+v", c)
	}
	if c.SlogLevel() != slog.LevelDebug {
		t.Fatalf("level = %v", c.SlogLevel())
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	res := Load(writeConfig(t, "[challenge\ngrace_window = "))
	if !errors.Is(res.ParseError, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", res.ParseError)
	}
	if res.Config.Grace() != 2*time.Hour {
		t.Fatal("defaults should survive a parse error")
	}
}

func TestLoadZeroGraceWindow(t *testing.T) {
	res := Load(writeConfig(t, "[challenge]\ngrace_window = \"0s\"\n"))
	if res.ParseError != nil {
		t.Fatal(res.ParseError)
	}
	if res.Config.Grace() != 0 {
		t.Fatalf("grace = %v, want 0", res.Config.Grace())
	}
	if err := res.Config.Validate(); err != nil {
		t.Fatalf("zero grace should be valid: %v", err)
	}

	cfg, err := applyEnv(Default(), envMap(map[string]string{"HARD75_GRACE_WINDOW": "0s"}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grace() != 0 {
		t.Fatalf("env grace = %v, want 0", cfg.Grace())
	}
}

func TestLoadBadDuration(t *testing.T) {
	res := Load(writeConfig(t, "[challenge]\ngrace_window = \"soon\"\n"))
	if !errors.Is(res.ParseError, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", res.ParseError)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg, err := applyEnv(Default(), envMap(map[string]string{
		"HARD75_GRACE_WINDOW":      "30m",
		"HARD75_REQUIRE_SELFIE":    "false",
		"HARD75_USER_NAME":         "Env User",
		"HARD75_LEADERBOARD_URL":   "http://localhost:8075",
		"HARD75_TELEMETRY_ENABLED": "true",
		"HARD75_DB_PATH":           "",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grace() != 30*time.Minute || cfg.SelfieRequired() {
		t.Fatalf("challenge overrides not applied: %+v", cfg.Challenge)
	}
	if cfg.User.Name != "Env User" || cfg.Leaderboard.URL != "http://localhost:8075" || !cfg.Telemetry.Enabled {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Storage.DBPath != "" {
		t.Fatal("empty values must not override")
	}
}

func TestApplyEnvErrors(t *testing.T) {
	_, err := applyEnv(Default(), envMap(map[string]string{
		"HARD75_CHECK_INTERVAL": "often",
		"HARD75_REQUIRE_SELFIE": "maybe",
	}))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("HARD75_LISTEN_ADDR=:9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("HARD75_LISTEN_ADDR") })

	res := Load(filepath.Join(dir, "missing.toml"))
	if res.ParseError != nil {
		t.Fatal(res.ParseError)
	}
	if res.Config.Leaderboard.ListenAddr != ":9999" {
		t.Fatalf("listen addr = %q", res.Config.Leaderboard.ListenAddr)
	}
}

func TestValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should be valid: %v", err)
	}

	c := Default()
	long := Duration(25 * time.Hour)
	c.Challenge.GraceWindow = &long
	c.Challenge.CheckInterval = Duration(time.Millisecond)
	err := c.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestSlogLevelUnknown(t *testing.T) {
	c := Default()
	c.LogLevel = "loud"
	if c.SlogLevel() != slog.LevelInfo {
		t.Fatalf("unknown level should fall back to info, got %v", c.SlogLevel())
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(path) != "config.toml" {
		t.Fatalf("unexpected path %s", path)
	}
}
