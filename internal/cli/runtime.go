package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/config"
	"github.com/sadopc/hard75/internal/leaderboard"
	"github.com/sadopc/hard75/internal/photo"
	"github.com/sadopc/hard75/internal/store"
	"github.com/sadopc/hard75/internal/telemetry"
	"github.com/sadopc/hard75/internal/tui"
)

// runtime is everything one command invocation works with.
type runtime struct {
	cfg      config.Config
	store    *store.Store
	mgr      *challenge.Manager
	board    tui.Board
	log      *slog.Logger
	userID   string
	photoDir string

	logFile  io.Closer
	shutdown func(context.Context) error
}

func loadConfig(flags *globalFlags) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	res := config.Load(path)
	if res.ParseError != nil {
		return config.Config{}, fmt.Errorf("load config %s: %w", res.Path, res.ParseError)
	}
	cfg := res.Config
	if flags.dbPath != "" {
		cfg.Storage.DBPath = flags.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openLog writes JSON logs next to the database; the terminal belongs to the
// TUI.
func openLog(dir string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "hard75.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func openRuntime(ctx context.Context, flags *globalFlags, version string) (*runtime, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	photoDir := cfg.Storage.PhotoDir
	if photoDir == "" {
		if photoDir, err = photo.DefaultDir(); err != nil {
			return nil, err
		}
	}

	logger, logFile, err := openLog(filepath.Dir(dbPath), cfg.SlogLevel())
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
	})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		_ = shutdown(ctx)
		logFile.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	userID := cfg.User.ID
	if userID == "" {
		if userID, err = s.UserID(); err != nil {
			s.Close()
			_ = shutdown(ctx)
			logFile.Close()
			return nil, err
		}
	}

	var (
		notifier challenge.Notifier
		board    tui.Board
	)
	if cfg.Leaderboard.URL != "" {
		c := leaderboard.NewClient(cfg.Leaderboard.URL, cfg.Leaderboard.Timeout.Std())
		notifier, board = c, c
	} else {
		local := leaderboard.NewLocalNotifier(s)
		notifier, board = local, local
	}

	grace := cfg.Grace()
	mgr := challenge.NewManager(s, s, s, challenge.Options{
		GraceWindow:   &grace,
		RequireSelfie: cfg.SelfieRequired(),
		UserID:        userID,
		UserName:      cfg.User.Name,
		NotifyTimeout: cfg.Leaderboard.Timeout.Std(),
		Notifier:      notifier,
		Logger:        logger,
		Clock:         clock,
	})

	logger.Debug("runtime opened", "db", dbPath, "leaderboard", cfg.Leaderboard.URL, "telemetry", cfg.Telemetry.Enabled)
	return &runtime{
		cfg:      cfg,
		store:    s,
		mgr:      mgr,
		board:    board,
		log:      logger,
		userID:   userID,
		photoDir: photoDir,
		logFile:  logFile,
		shutdown: shutdown,
	}, nil
}

// close waits for pending score submissions, then releases resources.
func (r *runtime) close() {
	r.mgr.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.shutdown(ctx); err != nil {
		r.log.Warn("telemetry shutdown", "error", err)
	}
	if err := r.store.Close(); err != nil {
		r.log.Warn("close database", "error", err)
	}
	r.logFile.Close()
}

// evaluate brings the challenge up to date before a command acts on it.
func (r *runtime) evaluate(ctx context.Context) (challenge.Outcome, error) {
	out, err := r.mgr.Evaluate(ctx, clock())
	if err != nil {
		return out, fmt.Errorf("evaluate challenge: %w", err)
	}
	return out, nil
}
