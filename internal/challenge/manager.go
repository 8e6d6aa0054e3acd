package challenge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "hard75/challenge"

// State is the manager's view of the active attempt, refreshed by every
// operation.
type State struct {
	Attempt     int
	CurrentDay  int
	Started     bool
	HasFailed   bool
	Finished    bool
	LastOutcome OutcomeKind
	LastError   error
}

type Options struct {
	// GraceWindow defaults to DefaultGraceWindow when nil. Zero disables
	// the grace window.
	GraceWindow   *time.Duration
	RequireSelfie bool
	UserID        string
	UserName      string

	// NotifyTimeout bounds one leaderboard submission.
	NotifyTimeout time.Duration

	Notifier Notifier
	Logger   *slog.Logger
	Clock    func() time.Time
}

// Manager applies engine outcomes and user actions to storage. All
// operations are serialized; it is safe to call from several goroutines.
type Manager struct {
	days     DayStore
	attempts AttemptCounter
	tasks    TaskCatalog
	opts     Options
	grace    time.Duration
	log      *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State

	notifyWG sync.WaitGroup
}

func NewManager(days DayStore, attempts AttemptCounter, tasks TaskCatalog, opts Options) *Manager {
	grace := DefaultGraceWindow
	if opts.GraceWindow != nil && *opts.GraceWindow >= 0 {
		grace = *opts.GraceWindow
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 10 * time.Second
	}
	if opts.UserName == "" {
		opts.UserName = "Anonymous"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		days:     days,
		attempts: attempts,
		tasks:    tasks,
		opts:     opts,
		grace:    grace,
		log:      logger,
		now:      clock,
		state:    State{CurrentDay: 1},
	}
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// GraceWindow returns the effective grace window.
func (m *Manager) GraceWindow() time.Duration { return m.grace }

// Wait blocks until pending score submissions have finished.
func (m *Manager) Wait() {
	m.notifyWG.Wait()
}

// Catalog returns the tasks required each day.
func (m *Manager) Catalog() ([]Task, error) {
	tasks, err := m.tasks.ListTasks()
	if err != nil {
		return nil, storageErr("list tasks", err)
	}
	if m.opts.RequireSelfie {
		tasks = WithSelfie(tasks)
	}
	return tasks, nil
}

// Days returns every record of the active attempt ordered by day.
func (m *Manager) Days(ctx context.Context) ([]DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attempt, err := m.attempts.CurrentAttempt()
	if err != nil {
		return nil, storageErr("current attempt", err)
	}
	days, err := m.days.GetAllDays(attempt)
	if err != nil {
		return nil, storageErr("list days", err)
	}
	return days, nil
}

// StartAttempt seeds a fresh attempt. Unless isFirstEver, the attempt counter
// is incremented first; records of earlier attempts are left alone.
func (m *Manager) StartAttempt(ctx context.Context, isFirstEver bool) error {
	ctx, span := m.startSpan(ctx, "challenge.start_attempt", attribute.Bool("first_ever", isFirstEver))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.startAttemptLocked(ctx, isFirstEver)
	endSpan(span, err)
	return err
}

func (m *Manager) startAttemptLocked(ctx context.Context, isFirstEver bool) error {
	var (
		attempt int
		err     error
	)
	if isFirstEver {
		attempt, err = m.attempts.CurrentAttempt()
	} else {
		attempt, err = m.attempts.IncrementAttempt()
	}
	if err != nil {
		return m.fail(storageErr("attempt counter", err))
	}
	if err := m.seedLocked(ctx, attempt); err != nil {
		return m.fail(err)
	}

	m.state = State{Attempt: attempt, CurrentDay: 1, Started: true}
	m.log.Info("attempt started", "attempt", attempt, "first_ever", isFirstEver)
	return nil
}

func (m *Manager) seedLocked(ctx context.Context, attempt int) error {
	catalog, err := m.Catalog()
	if err != nil {
		return err
	}
	n := len(catalog)
	now := m.now()

	for day := 1; day <= TotalDays; day++ {
		rec := DayRecord{
			AttemptNumber: attempt,
			DayNumber:     day,
			Status:        StatusLocked,
			TotalTasks:    n,
		}
		if day == 1 {
			rec.Status = StatusFailed
			rec.Timestamp = &now
		}
		if err := m.days.UpsertDay(rec); err != nil {
			return storageErr(fmt.Sprintf("seed day %d", day), err)
		}
	}
	trace.SpanFromContext(ctx).AddEvent("attempt.seeded", trace.WithAttributes(attribute.Int("attempt", attempt)))
	return nil
}

// Evaluate moves the challenge forward to now: it reads the latest stamped
// day, runs the engine and writes what the outcome asks for.
func (m *Manager) Evaluate(ctx context.Context, now time.Time) (Outcome, error) {
	ctx, span := m.startSpan(ctx, "challenge.evaluate")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	out, err := m.observeLocked(ctx, now)
	if err != nil {
		endSpan(span, err)
		return Outcome{}, err
	}

	span.SetAttributes(attribute.String("outcome", out.Kind.String()), attribute.Int("current_day", out.CurrentDay))
	endSpan(span, nil)
	return out, nil
}

// observeLocked evaluates at now and reseeds the attempt when its records
// are inconsistent.
func (m *Manager) observeLocked(ctx context.Context, now time.Time) (Outcome, error) {
	out, err := m.evaluateLocked(ctx, now)
	if errors.Is(err, ErrInvariantViolation) {
		m.log.Warn("reseeding attempt", "attempt", m.state.Attempt, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
		if serr := m.seedLocked(ctx, m.state.Attempt); serr != nil {
			return Outcome{}, m.fail(serr)
		}
		m.state = State{Attempt: m.state.Attempt, CurrentDay: 1, Started: true}
		return Outcome{Kind: OutcomeUnchanged, CurrentDay: 1}, nil
	}
	if err != nil {
		return Outcome{}, m.fail(err)
	}
	return out, nil
}

// openDayLocked brings the calendar up to date and returns the day that
// accepts task edits.
func (m *Manager) openDayLocked(ctx context.Context) (int, error) {
	out, err := m.observeLocked(ctx, m.now())
	if err != nil {
		return 0, err
	}
	if !m.state.Started {
		return 0, ErrNotStarted
	}
	if m.state.HasFailed {
		return 0, ErrAttemptFailed
	}
	if out.Kind == OutcomeChallengeFinished {
		return 0, fmt.Errorf("day %d: %w", out.CurrentDay, ErrDayClosed)
	}
	return out.CurrentDay, nil
}

func (m *Manager) evaluateLocked(ctx context.Context, now time.Time) (Outcome, error) {
	attempt, err := m.attempts.CurrentAttempt()
	if err != nil {
		return Outcome{}, storageErr("current attempt", err)
	}
	m.state.Attempt = attempt

	latest, err := m.days.GetLatestUpdatedDay(attempt)
	if err != nil {
		return Outcome{}, storageErr("latest day", err)
	}
	if latest == nil {
		all, err := m.days.GetAllDays(attempt)
		if err != nil {
			return Outcome{}, storageErr("list days", err)
		}
		if len(all) > 0 {
			return Outcome{}, invariantErr("attempt %d has %d days but none was ever opened", attempt, len(all))
		}
		m.state = State{Attempt: attempt, CurrentDay: 1}
		return Outcome{Kind: OutcomeUnchanged, CurrentDay: 1}, nil
	}
	if latest.DayNumber < 1 || latest.DayNumber > TotalDays {
		return Outcome{}, invariantErr("day number %d out of range", latest.DayNumber)
	}

	var next *DayRecord
	if latest.DayNumber < TotalDays {
		next, err = m.days.GetDay(attempt, latest.DayNumber+1)
		if err != nil {
			return Outcome{}, storageErr("next day", err)
		}
		if next == nil {
			return Outcome{}, invariantErr("attempt %d is missing day %d", attempt, latest.DayNumber+1)
		}
	}

	catalog, err := m.Catalog()
	if err != nil {
		return Outcome{}, err
	}

	out := Evaluate(Input{
		Now:         now,
		Latest:      *latest,
		Next:        next,
		CatalogSize: len(catalog),
		GraceWindow: m.grace,
	})

	for _, w := range out.Writes {
		if err := m.days.UpsertDay(w); err != nil {
			return Outcome{}, storageErr(fmt.Sprintf("write day %d", w.DayNumber), err)
		}
	}

	m.state.Started = true
	m.state.CurrentDay = out.CurrentDay
	m.state.LastOutcome = out.Kind
	m.state.LastError = nil
	switch out.Kind {
	case OutcomeAdvance:
		m.log.Info("day unlocked", "attempt", attempt, "day", out.CurrentDay)
	case OutcomeAttemptFailed:
		if !m.state.HasFailed {
			m.log.Info("attempt failed", "attempt", attempt, "day", out.CurrentDay)
		}
		m.state.HasFailed = true
	case OutcomeChallengeFinished:
		m.state.Finished = true
	}
	trace.SpanFromContext(ctx).AddEvent("evaluate." + out.Kind.String())
	return out, nil
}

// RecordTaskCompletion replaces the completed tasks of a day and recomputes
// its status and score. The calendar is evaluated first, so only the current
// day of a live attempt accepts edits. Completing the final day submits the
// attempt's score to the notifier in the background. A missing day returns
// nil, nil.
func (m *Manager) RecordTaskCompletion(ctx context.Context, dayNumber int, completedIDs []string) (*DayRecord, error) {
	ctx, span := m.startSpan(ctx, "challenge.record_tasks", attribute.Int("day", dayNumber))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.recordOpenLocked(ctx, dayNumber, completedIDs)
	endSpan(span, err)
	return rec, err
}

func (m *Manager) recordOpenLocked(ctx context.Context, dayNumber int, completedIDs []string) (*DayRecord, error) {
	current, err := m.openDayLocked(ctx)
	if errors.Is(err, ErrNotStarted) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if dayNumber < current {
		return nil, fmt.Errorf("day %d: %w", dayNumber, ErrDayClosed)
	}
	return m.recordLocked(ctx, dayNumber, completedIDs, nil)
}

// ToggleTask flips one task of the current day.
func (m *Manager) ToggleTask(ctx context.Context, taskID string) (*DayRecord, error) {
	ctx, span := m.startSpan(ctx, "challenge.toggle_task", attribute.String("task", taskID))
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, err := m.toggleLocked(ctx, taskID)
	endSpan(span, err)
	return rec, err
}

func (m *Manager) toggleLocked(ctx context.Context, taskID string) (*DayRecord, error) {
	day, err := m.currentDayLocked(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(day.CompletedTaskIDs)+1)
	found := false
	for _, id := range day.CompletedTaskIDs {
		if id == taskID {
			found = true
			continue
		}
		ids = append(ids, id)
	}
	if !found {
		ids = append(ids, taskID)
	}
	return m.recordLocked(ctx, day.DayNumber, ids, nil)
}

// AttachSelfie records a photo for the current day and ticks the selfie
// task.
func (m *Manager) AttachSelfie(ctx context.Context, path, note string) (*DayRecord, error) {
	ctx, span := m.startSpan(ctx, "challenge.attach_selfie")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	day, err := m.currentDayLocked(ctx)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	ids := day.CompletedTaskIDs
	if !day.HasTask(SelfieTaskID) {
		ids = append(append([]string(nil), ids...), SelfieTaskID)
	}
	rec, err := m.recordLocked(ctx, day.DayNumber, ids, func(d *DayRecord) {
		d.SelfiePath = path
		d.SelfieNote = note
	})
	endSpan(span, err)
	return rec, err
}

func (m *Manager) currentDayLocked(ctx context.Context) (*DayRecord, error) {
	n, err := m.openDayLocked(ctx)
	if err != nil {
		return nil, err
	}
	day, err := m.days.GetDay(m.state.Attempt, n)
	if err != nil {
		return nil, m.fail(storageErr("get day", err))
	}
	if day == nil {
		return nil, m.fail(invariantErr("attempt %d is missing day %d", m.state.Attempt, n))
	}
	return day, nil
}

func (m *Manager) recordLocked(ctx context.Context, dayNumber int, completedIDs []string, edit func(*DayRecord)) (*DayRecord, error) {
	attempt, err := m.attempts.CurrentAttempt()
	if err != nil {
		return nil, m.fail(storageErr("current attempt", err))
	}
	day, err := m.days.GetDay(attempt, dayNumber)
	if err != nil {
		return nil, m.fail(storageErr("get day", err))
	}
	if day == nil {
		return nil, nil
	}
	if day.Status == StatusLocked {
		return nil, fmt.Errorf("day %d: %w", dayNumber, ErrDayLocked)
	}

	catalog, err := m.Catalog()
	if err != nil {
		return nil, m.fail(err)
	}

	ids := normalizeTaskIDs(completedIDs, catalog)
	now := m.now()
	updated := *day
	updated.CompletedTaskIDs = ids
	updated.TotalTasks = len(catalog)
	updated.Status = StatusFor(len(ids), len(catalog))
	updated.Score = ScoreFor(updated.Status, ids)
	updated.Timestamp = &now
	if edit != nil {
		edit(&updated)
	}

	if err := m.days.UpsertDay(updated); err != nil {
		return nil, m.fail(storageErr("write day", err))
	}
	m.state.Attempt = attempt
	m.state.Started = true
	m.state.CurrentDay = dayNumber
	m.state.LastError = nil
	trace.SpanFromContext(ctx).AddEvent("day.recorded", trace.WithAttributes(
		attribute.String("status", string(updated.Status)),
		attribute.Int("score", updated.Score),
	))
	m.log.Debug("tasks recorded", "attempt", attempt, "day", dayNumber, "status", updated.Status, "score", updated.Score)

	if dayNumber == TotalDays && updated.Status == StatusCompleted {
		if day.Status != StatusCompleted && !m.state.Finished {
			m.completeLocked(attempt)
		}
		m.state.Finished = true
	}
	return &updated, nil
}

// completeLocked hands the attempt's total to the notifier. The local
// completion stands whatever the notifier does.
func (m *Manager) completeLocked(attempt int) {
	if m.opts.Notifier == nil {
		return
	}
	days, err := m.days.GetAllDays(attempt)
	if err != nil {
		m.log.Warn("score not submitted", "attempt", attempt, "error", err)
		return
	}
	sub := ScoreSubmission{
		UserID:     m.opts.UserID,
		UserName:   m.opts.UserName,
		TotalScore: TotalScore(days),
	}
	m.notifyWG.Add(1)
	go func() {
		defer m.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.opts.NotifyTimeout)
		defer cancel()
		ctx, span := otel.Tracer(tracerName).Start(ctx, "challenge.submit_score",
			trace.WithAttributes(attribute.Int("attempt", attempt), attribute.Int("total_score", sub.TotalScore)))
		defer span.End()

		if err := m.opts.Notifier.SubmitScore(ctx, sub); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			m.log.Warn("score submission failed", "attempt", attempt, "error", err)
			return
		}
		m.log.Info("score submitted", "attempt", attempt, "total_score", sub.TotalScore)
	}()
}

// DismissFailure acknowledges a failed attempt and starts the next one.
func (m *Manager) DismissFailure(ctx context.Context) error {
	ctx, span := m.startSpan(ctx, "challenge.dismiss_failure")
	defer span.End()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.HasFailed = false
	err := m.startAttemptLocked(ctx, false)
	endSpan(span, err)
	return err
}

func (m *Manager) fail(err error) error {
	m.state.LastError = err
	m.log.Error("challenge operation failed", "error", err)
	return err
}

func (m *Manager) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
