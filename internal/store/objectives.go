package store

import (
	"fmt"
	"strings"

	"github.com/sadopc/tempo/internal/domain"
)

// CreateObjective inserts o together with its key results and their history.
func (s *Store) CreateObjective(o domain.Objective) (*domain.Objective, error) {
	o.ID = newID(o.ID)
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		return nil, fmt.Errorf("insert objective: empty title")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO objectives (id, title) VALUES (?, ?)`, o.ID, o.Title); err != nil {
		return nil, fmt.Errorf("insert objective: %w", err)
	}
	for i := range o.KeyResults {
		o.KeyResults[i].ID = newID(o.KeyResults[i].ID)
		if err := insertKeyResult(tx, o.ID, o.KeyResults[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit objective: %w", err)
	}
	return &o, nil
}

func insertKeyResult(ex execer, objectiveID string, kr domain.KeyResult) error {
	_, err := ex.Exec(
		`INSERT INTO key_results (id, objective_id, title, estimated_time) VALUES (?, ?, ?, ?)`,
		kr.ID, objectiveID, kr.Title, kr.EstimatedTime,
	)
	if err != nil {
		return fmt.Errorf("insert key result: %w", err)
	}
	for _, h := range kr.History {
		if err := insertIncrement(ex, kr.ID, h); err != nil {
			return err
		}
	}
	return nil
}

func insertIncrement(ex execer, keyResultID string, h domain.HistoryEntry) error {
	if err := validDateKey(h.Date); err != nil {
		return fmt.Errorf("key result %s: %w", keyResultID, err)
	}
	_, err := ex.Exec(
		`INSERT INTO kr_history (key_result_id, date_key, increment) VALUES (?, ?, ?)`,
		keyResultID, h.Date, h.Increment,
	)
	if err != nil {
		return fmt.Errorf("insert increment: %w", err)
	}
	return nil
}

// AddKeyResult attaches kr to an existing objective.
func (s *Store) AddKeyResult(objectiveID string, kr domain.KeyResult) (*domain.KeyResult, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM objectives WHERE id = ?`, objectiveID).Scan(&exists); err != nil {
		return nil, notFound(err, "objective", objectiveID)
	}
	kr.ID = newID(kr.ID)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertKeyResult(tx, objectiveID, kr); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit key result: %w", err)
	}
	return &kr, nil
}

// RecordIncrement appends progress on a key result for a local date key.
// Negative increments are allowed and record regress.
func (s *Store) RecordIncrement(keyResultID, dateKey string, increment float64) error {
	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM key_results WHERE id = ?`, keyResultID).Scan(&exists); err != nil {
		return notFound(err, "key result", keyResultID)
	}
	return insertIncrement(s.db, keyResultID, domain.HistoryEntry{Date: dateKey, Increment: increment})
}

func upsertObjective(ex execer, o domain.Objective) error {
	o.ID = newID(o.ID)
	_, err := ex.Exec(
		`INSERT INTO objectives (id, title) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET title = excluded.title`,
		o.ID, o.Title,
	)
	if err != nil {
		return fmt.Errorf("upsert objective %s: %w", o.ID, err)
	}
	// Key results are replaced wholesale; history cascades with them.
	if _, err := ex.Exec(`DELETE FROM key_results WHERE objective_id = ?`, o.ID); err != nil {
		return fmt.Errorf("clear key results %s: %w", o.ID, err)
	}
	for _, kr := range o.KeyResults {
		kr.ID = newID(kr.ID)
		if _, err := ex.Exec(`DELETE FROM key_results WHERE id = ?`, kr.ID); err != nil {
			return fmt.Errorf("clear key result %s: %w", kr.ID, err)
		}
		if err := insertKeyResult(ex, o.ID, kr); err != nil {
			return err
		}
	}
	return nil
}

// ListObjectives returns objectives by title with key results and history
// in insertion order.
func (s *Store) ListObjectives() ([]domain.Objective, error) {
	rows, err := s.db.Query(`SELECT id, title FROM objectives ORDER BY title, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}
	defer rows.Close()

	var okrs []domain.Objective
	byID := make(map[string]int)
	for rows.Next() {
		var o domain.Objective
		if err := rows.Scan(&o.ID, &o.Title); err != nil {
			return nil, err
		}
		byID[o.ID] = len(okrs)
		okrs = append(okrs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	history, err := s.loadHistory()
	if err != nil {
		return nil, err
	}

	krRows, err := s.db.Query(`SELECT id, objective_id, title, estimated_time FROM key_results ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}
	defer krRows.Close()

	for krRows.Next() {
		var kr domain.KeyResult
		var objectiveID string
		if err := krRows.Scan(&kr.ID, &objectiveID, &kr.Title, &kr.EstimatedTime); err != nil {
			return nil, err
		}
		kr.History = history[kr.ID]
		if i, ok := byID[objectiveID]; ok {
			okrs[i].KeyResults = append(okrs[i].KeyResults, kr)
		}
	}
	return okrs, krRows.Err()
}

func (s *Store) loadHistory() (map[string][]domain.HistoryEntry, error) {
	rows, err := s.db.Query(`SELECT key_result_id, date_key, increment FROM kr_history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	history := make(map[string][]domain.HistoryEntry)
	for rows.Next() {
		var krID string
		var h domain.HistoryEntry
		if err := rows.Scan(&krID, &h.Date, &h.Increment); err != nil {
			return nil, err
		}
		history[krID] = append(history[krID], h)
	}
	return history, rows.Err()
}
