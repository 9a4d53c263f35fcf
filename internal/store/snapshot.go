package store

import (
	"fmt"

	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/logger"
)

// Snapshot reads all four collections for the statistics engine.
func (s *Store) Snapshot() (domain.Collections, error) {
	var c domain.Collections
	var err error
	if c.Tasks, err = s.ListTasks(); err != nil {
		return c, fmt.Errorf("snapshot: %w", err)
	}
	if c.Events, err = s.ListEvents(); err != nil {
		return c, fmt.Errorf("snapshot: %w", err)
	}
	if c.Habits, err = s.ListHabits(); err != nil {
		return c, fmt.Errorf("snapshot: %w", err)
	}
	if c.OKRs, err = s.ListObjectives(); err != nil {
		return c, fmt.Errorf("snapshot: %w", err)
	}
	return c, nil
}

// Import upserts every entity in c by ID inside one transaction. Habit
// completions and objective key results are replaced by the imported ones.
// Entities without an ID get a fresh one. Completion and history entries
// whose date is not a YYYY-MM-DD key are skipped with a warning.
func (s *Store) Import(c domain.Collections) error {
	c = dropInvalidDateKeys(c)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, t := range c.Tasks {
		if err := upsertTask(tx, t); err != nil {
			return err
		}
	}
	for _, e := range c.Events {
		if err := upsertEvent(tx, e); err != nil {
			return err
		}
	}
	for _, h := range c.Habits {
		if err := upsertHabit(tx, h); err != nil {
			return err
		}
	}
	for _, o := range c.OKRs {
		if err := upsertObjective(tx, o); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// dropInvalidDateKeys returns c with malformed completion keys and history
// dates removed. Habits and objectives are copied, so c is left untouched.
func dropInvalidDateKeys(c domain.Collections) domain.Collections {
	log := logger.Component("store")

	habits := make([]domain.Habit, len(c.Habits))
	for i, h := range c.Habits {
		clean := make(map[string]bool, len(h.Completions))
		for key, done := range h.Completions {
			if err := validDateKey(key); err != nil {
				log.Warn().Str("habit", h.ID).Str("key", key).Msg("skipping completion with invalid date key")
				continue
			}
			clean[key] = done
		}
		h.Completions = clean
		habits[i] = h
	}
	c.Habits = habits

	okrs := make([]domain.Objective, len(c.OKRs))
	for i, o := range c.OKRs {
		krs := make([]domain.KeyResult, len(o.KeyResults))
		for j, kr := range o.KeyResults {
			history := make([]domain.HistoryEntry, 0, len(kr.History))
			for _, entry := range kr.History {
				if err := validDateKey(entry.Date); err != nil {
					log.Warn().Str("key_result", kr.ID).Str("date", entry.Date).Msg("skipping history entry with invalid date")
					continue
				}
				history = append(history, entry)
			}
			kr.History = history
			krs[j] = kr
		}
		o.KeyResults = krs
		okrs[i] = o
	}
	c.OKRs = okrs
	return c
}
