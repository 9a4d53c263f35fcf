package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tempo/internal/domain"
)

const taskColumns = `id, name, category, priority, deadline, estimated_time, completed, completed_at`

const upsertTaskSQL = `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name, category = excluded.category, priority = excluded.priority,
		deadline = excluded.deadline, estimated_time = excluded.estimated_time,
		completed = excluded.completed, completed_at = excluded.completed_at`

// CreateTask inserts t, assigning a new ID when t.ID is empty.
func (s *Store) CreateTask(t domain.Task) (*domain.Task, error) {
	t.ID = newID(t.ID)
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, fmt.Errorf("insert task: empty name")
	}
	if t.Priority == 0 {
		t.Priority = 3
	}
	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		taskArgs(t)...,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(t.ID)
}

func taskArgs(t domain.Task) []any {
	return []any{t.ID, t.Name, t.Category, t.Priority, t.Deadline, t.EstimatedTime, boolInt(t.Completed), t.CompletedAt}
}

func upsertTask(ex execer, t domain.Task) error {
	t.ID = newID(t.ID)
	if _, err := ex.Exec(upsertTaskSQL, taskArgs(t)...); err != nil {
		return fmt.Errorf("upsert task %s: %w", t.ID, err)
	}
	return nil
}

func (s *Store) GetTask(id string) (*domain.Task, error) {
	var t domain.Task
	var completed int
	err := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Category, &t.Priority, &t.Deadline, &t.EstimatedTime, &completed, &t.CompletedAt)
	if err != nil {
		return nil, notFound(err, "task", id)
	}
	t.Completed = completed == 1
	return &t, nil
}

// CompleteTask marks a task done at the given instant, stored as UTC RFC3339.
func (s *Store) CompleteTask(id string, at time.Time) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET completed = 1, completed_at = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return fmt.Errorf("complete task %s: %w", id, err)
	}
	return mustAffect(res, "task", id)
}

func (s *Store) ReopenTask(id string) error {
	res, err := s.db.Exec(`UPDATE tasks SET completed = 0, completed_at = '' WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("reopen task %s: %w", id, err)
	}
	return mustAffect(res, "task", id)
}

// ListTasks returns every task in insertion order.
func (s *Store) ListTasks() ([]domain.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskColumns + ` FROM tasks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		var completed int
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.Priority, &t.Deadline, &t.EstimatedTime, &completed, &t.CompletedAt); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
