package store

import (
	"fmt"
	"strings"

	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
)

const upsertEventSQL = `INSERT INTO events (id, title, start_time, end_time, color) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title, start_time = excluded.start_time,
		end_time = excluded.end_time, color = excluded.color`

// CreateEvent inserts e. Start and End must parse as datetimes and End may
// not precede Start.
func (s *Store) CreateEvent(e domain.Event) (*domain.Event, error) {
	e.ID = newID(e.ID)
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return nil, fmt.Errorf("insert event: empty title")
	}
	start, ok := datekey.Parse(e.Start)
	if !ok {
		return nil, fmt.Errorf("insert event: invalid start %q", e.Start)
	}
	end, ok := datekey.Parse(e.End)
	if !ok {
		return nil, fmt.Errorf("insert event: invalid end %q", e.End)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("insert event: end %s before start %s", e.End, e.Start)
	}

	_, err := s.db.Exec(
		`INSERT INTO events (id, title, start_time, end_time, color) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Start, e.End, e.Color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &e, nil
}

func upsertEvent(ex execer, e domain.Event) error {
	e.ID = newID(e.ID)
	if _, err := ex.Exec(upsertEventSQL, e.ID, e.Title, e.Start, e.End, e.Color); err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, err)
	}
	return nil
}

// ListEvents returns every event ordered by its stored start string.
func (s *Store) ListEvents() ([]domain.Event, error) {
	rows, err := s.db.Query(`SELECT id, title, start_time, end_time, color FROM events ORDER BY start_time, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Start, &e.End, &e.Color); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
