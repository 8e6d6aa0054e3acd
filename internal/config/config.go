// Package config loads hard75's settings from config.toml, an optional .env
// file and HARD75_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const envPrefix = "HARD75_"

type Config struct {
	LogLevel    string            `toml:"log_level"`
	Challenge   ChallengeConfig   `toml:"challenge"`
	User        UserConfig        `toml:"user"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
	Storage     StorageConfig     `toml:"storage"`
}

type ChallengeConfig struct {
	// GraceWindow of "0s" turns the grace window off.
	GraceWindow   *Duration `toml:"grace_window"`
	RequireSelfie *bool     `toml:"require_selfie"`
	CheckInterval Duration  `toml:"check_interval"`
}

type UserConfig struct {
	Name string `toml:"name"`
	// ID overrides the generated user id.
	ID string `toml:"id"`
}

type LeaderboardConfig struct {
	URL        string   `toml:"url"`
	ListenAddr string   `toml:"listen_addr"`
	Timeout    Duration `toml:"timeout"`
}

type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	ServiceName string `toml:"service_name"`
}

type StorageConfig struct {
	DBPath   string `toml:"db_path"`
	PhotoDir string `toml:"photo_dir"`
}

// Duration is a time.Duration written as "2h" or "90m" in TOML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

const defaultGraceWindow = Duration(2 * time.Hour)

func Default() Config {
	requireSelfie := true
	grace := defaultGraceWindow
	return Config{
		LogLevel: "info",
		Challenge: ChallengeConfig{
			GraceWindow:   &grace,
			RequireSelfie: &requireSelfie,
			CheckInterval: Duration(time.Minute),
		},
		User:        UserConfig{Name: "Anonymous"},
		Leaderboard: LeaderboardConfig{ListenAddr: ":8075", Timeout: Duration(10 * time.Second)},
		Telemetry:   TelemetryConfig{Endpoint: "http://127.0.0.1:4318", ServiceName: "hard75"},
	}
}

// SelfieRequired reports whether the synthetic selfie task is part of the
// catalog.
func (c Config) SelfieRequired() bool {
	return c.Challenge.RequireSelfie == nil || *c.Challenge.RequireSelfie
}

// Grace returns the configured grace window.
func (c Config) Grace() time.Duration {
	if c.Challenge.GraceWindow == nil {
		return defaultGraceWindow.Std()
	}
	return c.Challenge.GraceWindow.Std()
}

// SlogLevel maps LogLevel onto slog; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

var (
	ErrInvalid = errors.New("invalid config")
)

type LoadResult struct {
	Config     Config
	Found      bool
	Path       string
	ParseError error
}

// DefaultPath returns <user config dir>/hard75/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hard75", "config.toml"), nil
}

// Load reads the TOML file at path and applies environment overrides. A
// missing file is not an error; the defaults are used.
func Load(path string) LoadResult {
	res := LoadResult{Config: Default(), Path: path}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		res.ParseError = err
	default:
		res.Found = true
		var parsed Config
		if err := toml.Unmarshal(b, &parsed); err != nil {
			res.ParseError = fmt.Errorf("%w: %v", ErrInvalid, err)
		} else {
			res.Config = merge(Default(), parsed)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) && res.ParseError == nil {
		res.ParseError = fmt.Errorf("load .env: %w", err)
	}

	cfg, err := applyEnv(res.Config, os.LookupEnv)
	if err != nil && res.ParseError == nil {
		res.ParseError = err
	}
	res.Config = cfg
	return res
}

func merge(def Config, cfg Config) Config {
	if cfg.LogLevel != "" {
		def.LogLevel = cfg.LogLevel
	}
	// Challenge
	if cfg.Challenge.GraceWindow != nil {
		def.Challenge.GraceWindow = cfg.Challenge.GraceWindow
	}
	if cfg.Challenge.RequireSelfie != nil {
		def.Challenge.RequireSelfie = cfg.Challenge.RequireSelfie
	}
	if cfg.Challenge.CheckInterval != 0 {
		def.Challenge.CheckInterval = cfg.Challenge.CheckInterval
	}
	// User
	if cfg.User.Name != "" {
		def.User.Name = cfg.User.Name
	}
	if cfg.User.ID != "" {
		def.User.ID = cfg.User.ID
	}
	// Leaderboard
	if cfg.Leaderboard.URL != "" {
		def.Leaderboard.URL = cfg.Leaderboard.URL
	}
	if cfg.Leaderboard.ListenAddr != "" {
		def.Leaderboard.ListenAddr = cfg.Leaderboard.ListenAddr
	}
	if cfg.Leaderboard.Timeout != 0 {
		def.Leaderboard.Timeout = cfg.Leaderboard.Timeout
	}
	// Telemetry
	def.Telemetry.Enabled = cfg.Telemetry.Enabled
	if cfg.Telemetry.Endpoint != "" {
		def.Telemetry.Endpoint = cfg.Telemetry.Endpoint
	}
	if cfg.Telemetry.ServiceName != "" {
		def.Telemetry.ServiceName = cfg.Telemetry.ServiceName
	}
	// Storage
	if cfg.Storage.DBPath != "" {
		def.Storage.DBPath = cfg.Storage.DBPath
	}
	if cfg.Storage.PhotoDir != "" {
		def.Storage.PhotoDir = cfg.Storage.PhotoDir
	}
	return def
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg Config, lookup lookupFunc) (Config, error) {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *Duration) bool {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return false
		}
		var d Duration
		if err := d.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s%s: %v", ErrInvalid, envPrefix, name, err))
			return false
		}
		*dst = d
		return true
	}
	boolean := func(name string, dst *bool) bool {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s%s: %v", ErrInvalid, envPrefix, name, err))
			return false
		}
		*dst = b
		return true
	}

	str("LOG_LEVEL", &cfg.LogLevel)
	var grace Duration
	if dur("GRACE_WINDOW", &grace) {
		cfg.Challenge.GraceWindow = &grace
	}
	dur("CHECK_INTERVAL", &cfg.Challenge.CheckInterval)
	var selfie bool
	if boolean("REQUIRE_SELFIE", &selfie) {
		cfg.Challenge.RequireSelfie = &selfie
	}
	str("USER_NAME", &cfg.User.Name)
	str("USER_ID", &cfg.User.ID)
	str("LEADERBOARD_URL", &cfg.Leaderboard.URL)
	str("LISTEN_ADDR", &cfg.Leaderboard.ListenAddr)
	dur("LEADERBOARD_TIMEOUT", &cfg.Leaderboard.Timeout)
	boolean("TELEMETRY_ENABLED", &cfg.Telemetry.Enabled)
	str("OTLP_ENDPOINT", &cfg.Telemetry.Endpoint)
	str("DB_PATH", &cfg.Storage.DBPath)
	str("PHOTO_DIR", &cfg.Storage.PhotoDir)

	return cfg, errors.Join(errs...)
}

// Validate reports settings the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	if g := c.Grace(); g < 0 || g >= 24*time.Hour {
		errs = append(errs, fmt.Errorf("%w: grace_window must be in [0, 24h)", ErrInvalid))
	}
	if c.Challenge.CheckInterval.Std() < time.Second {
		errs = append(errs, fmt.Errorf("%w: check_interval must be at least 1s", ErrInvalid))
	}
	if c.Leaderboard.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: leaderboard timeout must be positive", ErrInvalid))
	}
	return errors.Join(errs...)
}
