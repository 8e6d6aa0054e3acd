package challenge

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var errMockStorage = errors.New("disk on fire")

type dayKey struct{ attempt, day int }

// memDays is an in-memory DayStore.
type memDays struct {
	mu      sync.Mutex
	records map[dayKey]DayRecord
	writes  int
	failAll bool
}

func newMemDays() *memDays {
	return &memDays{records: make(map[dayKey]DayRecord)}
}

func cloneDay(d DayRecord) DayRecord {
	d.CompletedTaskIDs = append([]string(nil), d.CompletedTaskIDs...)
	if d.Timestamp != nil {
		ts := *d.Timestamp
		d.Timestamp = &ts
	}
	return d
}

func (m *memDays) GetDay(attempt, day int) (*DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockStorage
	}
	d, ok := m.records[dayKey{attempt, day}]
	if !ok {
		return nil, nil
	}
	d = cloneDay(d)
	return &d, nil
}

func (m *memDays) GetLatestUpdatedDay(attempt int) (*DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockStorage
	}
	var latest *DayRecord
	for k, d := range m.records {
		if k.attempt != attempt || d.Timestamp == nil {
			continue
		}
		if latest == nil || d.Timestamp.After(*latest.Timestamp) ||
			(d.Timestamp.Equal(*latest.Timestamp) && d.DayNumber > latest.DayNumber) {
			c := cloneDay(d)
			latest = &c
		}
	}
	return latest, nil
}

func (m *memDays) GetAllDays(attempt int) ([]DayRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errMockStorage
	}
	var out []DayRecord
	for k, d := range m.records {
		if k.attempt == attempt {
			out = append(out, cloneDay(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (m *memDays) UpsertDay(d DayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errMockStorage
	}
	m.records[dayKey{d.AttemptNumber, d.DayNumber}] = cloneDay(d)
	m.writes++
	return nil
}

func (m *memDays) put(d DayRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[dayKey{d.AttemptNumber, d.DayNumber}] = cloneDay(d)
}

func (m *memDays) del(attempt, day int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, dayKey{attempt, day})
}

func (m *memDays) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memCounter struct {
	n    int
	fail bool
}

func (c *memCounter) CurrentAttempt() (int, error) {
	if c.fail {
		return 0, errMockStorage
	}
	if c.n == 0 {
		return 1, nil
	}
	return c.n, nil
}

func (c *memCounter) IncrementAttempt() (int, error) {
	if c.fail {
		return 0, errMockStorage
	}
	cur, _ := c.CurrentAttempt()
	c.n = cur + 1
	return c.n, nil
}

type memCatalog struct {
	tasks []Task
}

func (c *memCatalog) ListTasks() ([]Task, error) {
	return append([]Task(nil), c.tasks...), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	subs []ScoreSubmission
	err  error
}

func (n *recordingNotifier) SubmitScore(_ context.Context, s ScoreSubmission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, s)
	return n.err
}

func (n *recordingNotifier) submissions() []ScoreSubmission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ScoreSubmission(nil), n.subs...)
}

// fakeClock is a settable clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
