package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/store"
)

var testStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestManager(t *testing.T, s *store.Store, clock *testClock) *challenge.Manager {
	t.Helper()
	return challenge.NewManager(s, s, s, challenge.Options{
		UserID:   "me",
		UserName: "Me",
		Clock:    clock.Now,
	})
}

func newTestApp(t *testing.T) (App, *store.Store, *testClock) {
	t.Helper()
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	app := NewApp(Deps{
		Manager:   newTestManager(t, s, clock),
		Store:     s,
		Clock:     clock.Now,
		PhotoDir:  t.TempDir(),
		ExportDir: t.TempDir(),
	})
	return app, s, clock
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadToday runs a refresh of the challenge view synchronously.
func loadToday(t *testing.T, d todayModel) todayModel {
	t.Helper()
	d, _ = d.update(d.refresh()())
	if d.loadErr != nil {
		t.Fatalf("load today: %v", d.loadErr)
	}
	return d
}

// expectChanged runs cmd and fails unless it reports a challenge write.
func expectChanged(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch msg := cmd().(type) {
	case challengeChangedMsg:
	case statusMsg:
		t.Fatalf("command failed: %s", msg.text)
	default:
		t.Fatalf("unexpected message %T", msg)
	}
}

// ============================================================
// Challenge view
// ============================================================

func TestTodayStartAttempt(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	d := loadToday(t, newTodayModel(newTestManager(t, s, clock), clock.Now, t.TempDir()))
	d.setSize(120, 40)

	if d.state.Started {
		t.Fatal("fresh install should not be started")
	}
	if !containsString(d.view(), "Press s to start") {
		t.Fatal("start prompt missing")
	}

	_, cmd := d.update(runes("s"))
	expectChanged(t, cmd)

	d = loadToday(t, d)
	if !d.state.Started || d.state.Attempt != 1 || d.state.CurrentDay != 1 {
		t.Fatalf("unexpected state %+v", d.state)
	}
	if len(d.days) != challenge.TotalDays {
		t.Fatalf("expected %d days, got %d", challenge.TotalDays, len(d.days))
	}
	if !containsString(d.view(), "Day 1 / 75") {
		t.Fatal("day counter missing")
	}
}

func TestTodayStartIgnoredWhileEvaluating(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	// A second manager has not evaluated yet but sees the stored days.
	d := loadToday(t, newTodayModel(newTestManager(t, s, clock), clock.Now, t.TempDir()))
	d.setSize(120, 40)
	if _, cmd := d.update(runes("s")); cmd != nil {
		t.Fatal("start must not fire before the calendar is evaluated")
	}
	if !containsString(d.view(), "Checking the calendar") {
		t.Fatal("expected evaluation placeholder")
	}
}

func TestTodayToggleTask(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	d := loadToday(t, newTodayModel(m, clock.Now, t.TempDir()))

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyDown})
	if d.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", d.cursor)
	}
	want := d.catalog[1].ID

	_, cmd := d.update(tea.KeyMsg{Type: tea.KeySpace})
	expectChanged(t, cmd)

	d = loadToday(t, d)
	today := d.today()
	if today == nil || !today.HasTask(want) {
		t.Fatalf("task %q should be completed, got %+v", want, today)
	}
	if today.Status != challenge.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", today.Status)
	}
}

func TestTodayFailureDismiss(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	out, err := m.Evaluate(context.Background(), testStart.AddDate(0, 0, 1).Add(3*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if out.Kind != challenge.OutcomeAttemptFailed {
		t.Fatalf("outcome = %s, want attempt_failed", out.Kind)
	}

	d := loadToday(t, newTodayModel(m, clock.Now, t.TempDir()))
	d.setSize(120, 40)
	if !containsString(d.view(), "Attempt 1 is over") {
		t.Fatal("failure dialog missing")
	}

	// Toggling is disabled while the dialog is shown.
	if _, cmd := d.update(tea.KeyMsg{Type: tea.KeySpace}); cmd != nil {
		t.Fatal("toggle should be ignored on a failed attempt")
	}

	_, cmd := d.update(tea.KeyMsg{Type: tea.KeyEnter})
	expectChanged(t, cmd)

	d = loadToday(t, d)
	if d.state.HasFailed || d.state.Attempt != 2 || d.state.CurrentDay != 1 {
		t.Fatalf("unexpected state after dismiss %+v", d.state)
	}
}

func TestTodayToggleAfterMissedDayShowsFailure(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	d := loadToday(t, newTodayModel(m, clock.Now, t.TempDir()))
	d.setSize(120, 40)

	// The machine slept through day 1; the first keypress comes before the
	// next tick.
	clock.now = testStart.AddDate(0, 0, 1).Add(6 * time.Hour)
	_, cmd := d.update(tea.KeyMsg{Type: tea.KeySpace})
	expectChanged(t, cmd)

	d = loadToday(t, d)
	if !d.state.HasFailed {
		t.Fatalf("attempt should have failed, got %+v", d.state)
	}
	if today := d.today(); today == nil || today.Status != challenge.StatusFailed || len(today.CompletedTaskIDs) != 0 {
		t.Fatalf("missed day must stay failed, got %+v", today)
	}
	if !containsString(d.view(), "Attempt 1 is over") {
		t.Fatal("failure dialog missing")
	}
}

func TestTodayAttachSelfieAfterMissedDayRemovesCopy(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := challenge.NewManager(s, s, s, challenge.Options{RequireSelfie: true, Clock: clock.Now})
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	photoDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "late.jpg")
	if err := os.WriteFile(src, []byte("jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}

	clock.now = testStart.AddDate(0, 0, 2)
	d := newTodayModel(m, clock.Now, photoDir)
	expectChanged(t, d.attachSelfie(src, "too late"))

	entries, err := os.ReadDir(photoDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("refused selfie should not stay in the photo dir, found %d files", len(entries))
	}
	if !m.State().HasFailed {
		t.Fatal("attempt should have failed")
	}
}

func TestTodaySelfieFormCancel(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	d := loadToday(t, newTodayModel(m, clock.Now, t.TempDir()))
	d.setSize(120, 40)

	d, _ = d.update(runes("p"))
	if !d.formActive || d.formType != "selfie" {
		t.Fatal("selfie form should be open")
	}
	if !containsString(d.view(), "Attach Selfie") {
		t.Fatal("form title missing")
	}

	d, _ = d.update(tea.KeyMsg{Type: tea.KeyEsc})
	if d.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestTodayRestartFormOpens(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	d := loadToday(t, newTodayModel(m, clock.Now, t.TempDir()))

	d, _ = d.update(runes("R"))
	if !d.formActive || d.formType != "restart" {
		t.Fatal("restart confirmation should be open")
	}
	if *d.formConfirm {
		t.Fatal("restart should default to no")
	}
}

func TestTodayAttachSelfie(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := challenge.NewManager(s, s, s, challenge.Options{RequireSelfie: true, Clock: clock.Now})
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	photoDir := t.TempDir()
	src := filepath.Join(t.TempDir(), "me.png")
	if err := os.WriteFile(src, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := loadToday(t, newTodayModel(m, clock.Now, photoDir))
	expectChanged(t, d.attachSelfie(src, "day one"))

	d = loadToday(t, d)
	today := d.today()
	if today == nil || filepath.Dir(today.SelfiePath) != photoDir || today.SelfieNote != "day one" {
		t.Fatalf("selfie not recorded: %+v", today)
	}
	if !today.HasTask(challenge.SelfieTaskID) {
		t.Fatal("selfie task should be ticked")
	}
}

func TestTodayAttachSelfieBadFile(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	d := newTodayModel(m, clock.Now, t.TempDir())

	msg := d.attachSelfie(filepath.Join(t.TempDir(), "notes.txt"), "")()
	if st, ok := msg.(statusMsg); !ok || !st.isError {
		t.Fatalf("expected error status, got %#v", msg)
	}
}

func TestTodayGridShowsAllDays(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	d := loadToday(t, newTodayModel(m, clock.Now, t.TempDir()))

	grid := d.renderGrid()
	for _, n := range []string{" 1", "15", "16", "75"} {
		if !containsString(grid, n) {
			t.Fatalf("grid missing day %s", n)
		}
	}
}

// ============================================================
// Tasks view
// ============================================================

func TestTasksAddAndDelete(t *testing.T) {
	s := newTestStore(t)
	tm := newTasksModel(s, time.Now)
	tm, _ = tm.update(tm.refresh()())
	before := len(tm.tasks)

	if _, ok := tm.addTask("Cold shower")().(tasksChangedMsg); !ok {
		t.Fatal("add should report a change")
	}
	tm, _ = tm.update(tm.refresh()())
	if len(tm.tasks) != before+1 || tm.tasks[len(tm.tasks)-1].Name != "Cold shower" {
		t.Fatalf("task not appended: %+v", tm.tasks)
	}

	tm.cursor = len(tm.tasks) - 1
	_, cmd := tm.update(runes("d"))
	if _, ok := cmd().(tasksChangedMsg); !ok {
		t.Fatal("delete should report a change")
	}
	tm, _ = tm.update(tm.refresh()())
	if len(tm.tasks) != before {
		t.Fatalf("expected %d tasks, got %d", before, len(tm.tasks))
	}
	if tm.cursor >= len(tm.tasks) {
		t.Fatal("cursor should be clamped")
	}
}

func TestTasksNewFormCancel(t *testing.T) {
	tm := newTasksModel(newTestStore(t), time.Now)
	tm.setSize(120, 40)

	tm, _ = tm.update(runes("n"))
	if !tm.formActive {
		t.Fatal("form should be open")
	}
	if !containsString(tm.view(), "New Task") {
		t.Fatal("form title missing")
	}
	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyEsc})
	if tm.formActive {
		t.Fatal("esc should close the form")
	}
}

// ============================================================
// History and gallery
// ============================================================

func TestGroupAttempts(t *testing.T) {
	stamp := testStart
	days := []challenge.DayRecord{
		{AttemptNumber: 1, DayNumber: 1, Status: challenge.StatusCompleted, Score: 10, Timestamp: &stamp},
		{AttemptNumber: 1, DayNumber: 2, Status: challenge.StatusFailed, Timestamp: &stamp},
		{AttemptNumber: 2, DayNumber: 1, Status: challenge.StatusInProgress, Score: 4, Timestamp: &stamp},
		{AttemptNumber: 2, DayNumber: 2, Status: challenge.StatusLocked},
	}

	got := groupAttempts(days)
	if len(got) != 2 || got[0].attempt != 2 || got[1].attempt != 1 {
		t.Fatalf("attempts should be newest first: %+v", got)
	}
	if got[1].completed != 1 || got[1].score != 10 || !got[1].failed {
		t.Fatalf("unexpected attempt 1 summary %+v", got[1])
	}
	if got[0].failed || got[0].score != 4 {
		t.Fatalf("unexpected attempt 2 summary %+v", got[0])
	}
}

func TestHistoryNavigation(t *testing.T) {
	h := newHistoryModel(newTestStore(t))
	h.setSize(120, 40)
	stamp := testStart
	h, _ = h.update(historyDataMsg{attempts: groupAttempts([]challenge.DayRecord{
		{AttemptNumber: 1, DayNumber: 1, Status: challenge.StatusCompleted, Score: 10, Timestamp: &stamp},
		{AttemptNumber: 2, DayNumber: 1, Status: challenge.StatusCompleted, Score: 10, Timestamp: &stamp},
	})})

	h, _ = h.update(tea.KeyMsg{Type: tea.KeyLeft})
	if h.selected != 1 {
		t.Fatalf("left should select the older attempt, got %d", h.selected)
	}
	h, _ = h.update(tea.KeyMsg{Type: tea.KeyLeft})
	if h.selected != 1 {
		t.Fatal("selection should stop at the oldest attempt")
	}
	for range 10 {
		h, _ = h.update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if h.page != 4 {
		t.Fatalf("page = %d, want 4", h.page)
	}
	if !containsString(h.view(), "days 61-75") {
		t.Fatal("page label missing")
	}
}

func TestGalleryListsSelfies(t *testing.T) {
	s := newTestStore(t)
	clock := &testClock{now: testStart}
	m := newTestManager(t, s, clock)
	if err := m.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AttachSelfie(context.Background(), "/photos/abc.jpg", "first"); err != nil {
		t.Fatal(err)
	}

	g := newGalleryModel(s, clock.Now)
	g.setSize(120, 40)
	if !containsString(g.view(), "No selfies yet") {
		t.Fatal("empty gallery message missing")
	}
	g, _ = g.update(g.refresh()())
	out := g.view()
	if !containsString(out, "Attempt 1") || !containsString(out, "abc.jpg") || !containsString(out, "first") {
		t.Fatalf("gallery missing selfie: %s", out)
	}
}

// ============================================================
// Leaderboard view
// ============================================================

type fakeBoard struct {
	entries []store.LeaderboardEntry
	err     error
	limit   int
}

func (b *fakeBoard) Fetch(_ context.Context, limit int) ([]store.LeaderboardEntry, error) {
	b.limit = limit
	return b.entries, b.err
}

func TestLeaderboardView(t *testing.T) {
	board := &fakeBoard{entries: []store.LeaderboardEntry{
		{UserID: "a", UserName: "Alice", TotalScore: 1250, CompletedAt: testStart},
		{UserID: "me", UserName: "Me", TotalScore: 740, CompletedAt: testStart},
	}}
	l := newLeaderboardModel(board, "me", func() time.Time { return testStart.Add(time.Hour) })
	l.setSize(120, 40)

	l, cmd := l.update(runes("r"))
	if !l.loading {
		t.Fatal("refresh should mark loading")
	}
	l, _ = l.update(cmd())
	if board.limit != leaderboardLimit {
		t.Fatalf("limit = %d", board.limit)
	}
	out := l.view()
	if !containsString(out, "Alice") || !containsString(out, "1,250") || !containsString(out, "* 2") {
		t.Fatalf("unexpected leaderboard view: %s", out)
	}
}

func TestLeaderboardViewErrors(t *testing.T) {
	l := newLeaderboardModel(nil, "", time.Now)
	l.setSize(120, 40)
	if l.refresh() != nil {
		t.Fatal("no board means no refresh")
	}
	if !containsString(l.view(), "not configured") {
		t.Fatal("expected not configured message")
	}

	board := &fakeBoard{err: errors.New("connection refused")}
	l = newLeaderboardModel(board, "", time.Now)
	l.setSize(120, 40)
	l, _ = l.update(l.refresh()())
	if !containsString(l.view(), "connection refused") {
		t.Fatal("error should be shown")
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.activeView != viewChallenge {
		t.Fatal("default view should be challenge")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.interval != time.Minute {
		t.Fatalf("interval = %v, want 1m", app.interval)
	}
}

func TestAppIsFormActiveDefault(t *testing.T) {
	app, _, _ := newTestApp(t)

	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	for i := range viewNames {
		app.activeView = viewState(i)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppTabSwitching(t *testing.T) {
	app, _, _ := newTestApp(t)

	model, cmd := app.Update(runes("3"))
	app = model.(App)
	if app.activeView != viewHistory || cmd == nil {
		t.Fatal("3 should switch to history and refresh it")
	}

	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = model.(App)
	if app.activeView != viewGallery {
		t.Fatalf("tab should move to gallery, got %d", app.activeView)
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !containsString(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app, _, _ := newTestApp(t)
	// Width 0 means not yet sized
	output := app.View()
	if output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "test status", isError: true})
	app = model.(App)
	if !app.statusError || !containsString(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppEvaluatedMessages(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	model, cmd := app.Update(evaluatedMsg{outcome: challenge.Outcome{Kind: challenge.OutcomeAdvance, CurrentDay: 2}})
	app = model.(App)
	if app.status != "Day 2 unlocked" || cmd == nil {
		t.Fatalf("unexpected status %q", app.status)
	}

	model, _ = app.Update(evaluatedMsg{err: challenge.ErrStorageUnavailable})
	app = model.(App)
	if !app.statusError || !strings.HasPrefix(app.status, "Evaluation failed") {
		t.Fatalf("unexpected status %q", app.status)
	}
}

func TestAppEvaluateAdvancesDay(t *testing.T) {
	app, _, clock := newTestApp(t)
	if err := app.mgr.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	for _, task := range mustCatalog(t, app.mgr) {
		if _, err := app.mgr.ToggleTask(context.Background(), task.ID); err != nil {
			t.Fatal(err)
		}
	}

	clock.now = testStart.AddDate(0, 0, 1).Add(3 * time.Hour)
	msg, ok := app.evaluate()().(evaluatedMsg)
	if !ok || msg.err != nil {
		t.Fatalf("unexpected evaluation %#v", msg)
	}
	if msg.outcome.Kind != challenge.OutcomeAdvance || msg.outcome.CurrentDay != 2 {
		t.Fatalf("unexpected outcome %+v", msg.outcome)
	}
}

func mustCatalog(t *testing.T, m *challenge.Manager) []challenge.Task {
	t.Helper()
	tasks, err := m.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	return tasks
}

func TestAppExportPicker(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.width = 120
	app.height = 40

	model, _ := app.Update(runes("e"))
	app = model.(App)
	if !app.exportPicking {
		t.Fatal("e should open the export picker")
	}
	if !containsString(app.View(), "Export Format") {
		t.Fatal("picker not rendered")
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = model.(App)
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = model.(App)
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
	app = model.(App)
	if app.exportCursor != len(exportFormats)-1 {
		t.Fatalf("cursor = %d", app.exportCursor)
	}
	model, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	app = model.(App)
	if app.exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppDoExport(t *testing.T) {
	app, _, _ := newTestApp(t)
	if err := app.mgr.StartAttempt(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	for _, format := range exportFormats {
		msg := app.doExport(format)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("%s export failed: %#v", format, msg)
		}
		if !strings.HasSuffix(done.path, "hard75-export-2026-03-02."+format) {
			t.Fatalf("unexpected path %s", done.path)
		}
		if info, err := os.Stat(done.path); err != nil || info.Size() == 0 {
			t.Fatalf("export file missing: %v", err)
		}
	}
}

func TestTaskNamesIncludesSelfie(t *testing.T) {
	names, err := taskNames(newTestStore(t))
	if err != nil {
		t.Fatal(err)
	}
	if names[challenge.SelfieTaskID] == "" || names["gym"] != "Go to the Gym" {
		t.Fatalf("unexpected names %v", names)
	}
}

// ============================================================
// Helpers
// ============================================================

func TestProgressBar(t *testing.T) {
	if progressBar(1, 0, 10) != "" {
		t.Fatal("zero total should render nothing")
	}
	if !containsString(progressBar(3, 9, 9), "3/9") {
		t.Fatal("counter missing")
	}
	if !containsString(progressBar(12, 9, 9), "12/9") {
		t.Fatal("overflow should still render")
	}
}

func TestAgo(t *testing.T) {
	if ago(nil, testStart) != "never" {
		t.Fatal("nil timestamp should be never")
	}
	then := testStart.Add(-2 * time.Hour)
	if got := ago(&then, testStart); got != "2 hours ago" {
		t.Fatalf("ago = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/pics/a.jpg"); got != filepath.Join(home, "pics/a.jpg") {
		t.Fatalf("expandHome = %q", got)
	}
	if got := expandHome("/abs/a.jpg"); got != "/abs/a.jpg" {
		t.Fatalf("absolute path changed: %q", got)
	}
}

func TestStatusLabels(t *testing.T) {
	for _, s := range []challenge.Status{challenge.StatusLocked, challenge.StatusFailed, challenge.StatusInProgress, challenge.StatusCompleted} {
		if statusLabel(s) == "" || statusColor(s) == "" {
			t.Fatalf("missing label or color for %s", s)
		}
	}
}

func TestViewNames(t *testing.T) {
	if len(viewNames) != int(viewLeaderboard)+1 {
		t.Fatalf("expected %d view names, got %d", viewLeaderboard+1, len(viewNames))
	}
}

// containsString checks if s contains substr; ANSI codes around words do not
// split them.
func containsString(s, substr string) bool {
	return len(s) > 0 && len(substr) > 0 && strings.Contains(s, substr)
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	bindings := keys.ShortHelp()
	if len(bindings) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: they render without panicking)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"alertPanel", func() string { return alertPanelStyle.Render("test") }},
		{"dayCounter", func() string { return dayCounterStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"subtitle", func() string { return subtitleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}
	for _, s := range styles {
		t.Run(s.name, func(t *testing.T) {
			if out := s.fn(); out == "" {
				t.Fatal("rendered empty")
			}
		})
	}
}
