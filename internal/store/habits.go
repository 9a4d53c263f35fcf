package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
)

// CreateHabit inserts h with any completions it already carries. An empty
// CreatedAt defaults to today's local date key.
func (s *Store) CreateHabit(h domain.Habit) (*domain.Habit, error) {
	h.ID = newID(h.ID)
	h.Name = strings.TrimSpace(h.Name)
	if h.Name == "" {
		return nil, fmt.Errorf("insert habit: empty name")
	}
	if h.CreatedAt == "" {
		h.CreatedAt = datekey.Key(time.Now())
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO habits (id, name, estimated_time, created_at) VALUES (?, ?, ?, ?)`,
		h.ID, h.Name, h.EstimatedTime, h.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	if err := writeCompletions(tx, h); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit habit: %w", err)
	}
	return &h, nil
}

func writeCompletions(ex execer, h domain.Habit) error {
	for key, done := range h.Completions {
		if err := validDateKey(key); err != nil {
			return fmt.Errorf("habit %s: %w", h.ID, err)
		}
		_, err := ex.Exec(
			`INSERT INTO habit_completions (habit_id, date_key, done) VALUES (?, ?, ?)
			ON CONFLICT(habit_id, date_key) DO UPDATE SET done = excluded.done`,
			h.ID, key, boolInt(done),
		)
		if err != nil {
			return fmt.Errorf("write completion %s/%s: %w", h.ID, key, err)
		}
	}
	return nil
}

func upsertHabit(ex execer, h domain.Habit) error {
	h.ID = newID(h.ID)
	_, err := ex.Exec(
		`INSERT INTO habits (id, name, estimated_time, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, estimated_time = excluded.estimated_time, created_at = excluded.created_at`,
		h.ID, h.Name, h.EstimatedTime, h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert habit %s: %w", h.ID, err)
	}
	if _, err := ex.Exec(`DELETE FROM habit_completions WHERE habit_id = ?`, h.ID); err != nil {
		return fmt.Errorf("clear completions %s: %w", h.ID, err)
	}
	return writeCompletions(ex, h)
}

// SetHabitCompletion records whether the habit was done on the given local
// date key.
func (s *Store) SetHabitCompletion(habitID, dateKey string, done bool) error {
	if err := validDateKey(dateKey); err != nil {
		return err
	}
	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM habits WHERE id = ?`, habitID).Scan(&exists)
	if err != nil {
		return notFound(err, "habit", habitID)
	}
	return writeCompletions(s.db, domain.Habit{ID: habitID, Completions: map[string]bool{dateKey: done}})
}

// ListHabits returns all habits, ordered by name, with their completions.
func (s *Store) ListHabits() ([]domain.Habit, error) {
	rows, err := s.db.Query(`SELECT id, name, estimated_time, created_at FROM habits ORDER BY name, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []domain.Habit
	index := make(map[string]int)
	for rows.Next() {
		h := domain.Habit{Completions: make(map[string]bool)}
		if err := rows.Scan(&h.ID, &h.Name, &h.EstimatedTime, &h.CreatedAt); err != nil {
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadCompletions(habits, index); err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *Store) loadCompletions(habits []domain.Habit, index map[string]int) error {
	rows, err := s.db.Query(`SELECT habit_id, date_key, done FROM habit_completions`)
	if err != nil {
		return fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var habitID, key string
		var done int
		if err := rows.Scan(&habitID, &key, &done); err != nil {
			return err
		}
		if i, ok := index[habitID]; ok {
			habits[i].Completions[key] = done == 1
		}
	}
	return rows.Err()
}
