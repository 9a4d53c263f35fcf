// Package stats computes time-invested aggregates over tasks, calendar
// events, habits and OKRs. Every function here is pure: inputs are read-only
// snapshots, nothing is cached globally, and bad data is skipped rather than
// reported.
package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/tempo/internal/datekey"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
)

// Granularities lists every granularity in ascending span.
var Granularities = []Granularity{Day, Week, Month, Year}

var ErrUnknownGranularity = errors.New("unknown granularity")

func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Day, Week, Month, Year:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// Next cycles day -> week -> month -> year -> day.
func (g Granularity) Next() Granularity {
	for i, v := range Granularities {
		if v == g {
			return Granularities[(i+1)%len(Granularities)]
		}
	}
	return Day
}

// Window is an inclusive [Start, End] range at millisecond precision.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports start <= t <= end with t truncated to milliseconds.
func (w Window) Contains(t time.Time) bool {
	t = t.Truncate(time.Millisecond)
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w Window) Location() *time.Location {
	return w.Start.Location()
}

// Days is the number of calendar days the window touches.
func (w Window) Days() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return datekey.DaysBetween(w.Start, w.End) + 1
}

// WeekStart returns the Monday of t's week at local midnight.
func WeekStart(t time.Time) time.Time {
	wd := int(t.Weekday())
	offset := 1 - wd
	if wd == 0 {
		offset = -6
	}
	y, m, d := t.Date()
	return datekey.Midnight(y, m, d+offset, t.Location())
}

// PeriodWindow returns the calendar-aligned window for the bucket anchored
// at anchor. Week windows start at the anchor itself; callers align the
// anchor with WeekStart first.
func PeriodWindow(g Granularity, anchor time.Time) Window {
	loc := anchor.Location()
	y, m, d := anchor.Date()

	switch g {
	case Week:
		start := datekey.Midnight(y, m, d, loc)
		return Window{Start: start, End: endOfDay(y, m, d+6, loc)}
	case Month:
		// Day 0 of the next month is the last day of this one.
		return Window{Start: datekey.Midnight(y, m, 1, loc), End: endOfDay(y, m+1, 0, loc)}
	case Year:
		return Window{Start: datekey.Midnight(y, time.January, 1, loc), End: endOfDay(y, time.December, 31, loc)}
	default:
		return Window{Start: datekey.Midnight(y, m, d, loc), End: endOfDay(y, m, d, loc)}
	}
}

func endOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	return datekey.EndOfDay(time.Date(y, m, d, 12, 0, 0, 0, loc))
}
