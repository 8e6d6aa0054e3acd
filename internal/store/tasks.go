package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/hard75/internal/challenge"
)

// ListTasks returns the catalog in position order.
func (s *Store) ListTasks() ([]challenge.Task, error) {
	rows, err := s.ListTaskRows()
	if err != nil {
		return nil, err
	}
	tasks := make([]challenge.Task, len(rows))
	for i, r := range rows {
		tasks[i] = r.Task
	}
	return tasks, nil
}

func (s *Store) ListTaskRows() ([]TaskRow, error) {
	rows, err := s.db.Query(`SELECT id, name, position, created_at FROM tasks ORDER BY position, created_at`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []TaskRow
	for rows.Next() {
		var t TaskRow
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &t.Position, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// AddTask appends a task to the end of the catalog.
func (s *Store) AddTask(name string) (*challenge.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("add task: name is required")
	}
	t := &challenge.Task{ID: uuid.NewString(), Name: name}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, name, position, created_at)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks), ?)`,
		t.ID, t.Name, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task from the catalog. Days already written keep
// their snapshot.
func (s *Store) DeleteTask(id string) error {
	if id == challenge.SelfieTaskID {
		return fmt.Errorf("delete task: %q is built in", id)
	}
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %q: %w", id, ErrNotFound)
	}
	return nil
}
