package stats

import (
	"testing"
	"time"

	"github.com/sadopc/tempo/internal/domain"
)

// ============================================================
// RollingRange
// ============================================================

func TestRollingRangeLengths(t *testing.T) {
	tests := []struct {
		g     Granularity
		start time.Time
	}{
		{Day, day(2024, 3, 13, utc)},
		{Week, day(2024, 3, 7, utc)},
		{Month, day(2024, 2, 13, utc)},
		{Year, day(2023, 3, 15, utc)},
	}
	for _, tt := range tests {
		w := RollingRange(tt.g, wednesday)
		if !w.Start.Equal(tt.start) {
			t.Errorf("%s: start = %v, want %v", tt.g, w.Start, tt.start)
		}
		if !w.End.Equal(endOf(2024, 3, 13, utc)) {
			t.Errorf("%s: end = %v", tt.g, w.End)
		}
		if w.Days() != RollingDays(tt.g) {
			t.Errorf("%s: Days() = %d, want %d", tt.g, w.Days(), RollingDays(tt.g))
		}
	}
}

func TestRollingWeekDiffersFromCalendarWeek(t *testing.T) {
	rolling := RollingRange(Week, wednesday)
	pts := BuildSeries(Week, domain.Collections{}, wednesday, All)
	calendar := pts[len(pts)-1].Window

	if rolling.Start.Equal(calendar.Start) {
		t.Fatal("rolling week should not start on the calendar Monday mid-week")
	}
	if rolling.Start.Weekday() != time.Thursday || calendar.Start.Weekday() != time.Monday {
		t.Fatalf("rolling starts %s, calendar starts %s", rolling.Start.Weekday(), calendar.Start.Weekday())
	}
	if !rolling.End.Before(calendar.End) {
		t.Fatal("rolling window ends today, calendar week ends on Sunday")
	}
}

// ============================================================
// ComputeRolling
// ============================================================

func TestComputeRollingWeek(t *testing.T) {
	r := ComputeRolling(Week, sampleCollections(), wednesday)

	if len(r.Tasks) != 2 || r.TasksTime != 75 {
		t.Fatalf("tasks = %d / %v", len(r.Tasks), r.TasksTime)
	}
	if len(r.Events) != 2 || r.EventsTime != 135 {
		t.Fatalf("events = %d / %v", len(r.Events), r.EventsTime)
	}
	if r.HabitsTime != 60 || r.OKRTime != 0 {
		t.Fatalf("habits = %v okr = %v", r.HabitsTime, r.OKRTime)
	}
	if r.TotalTime != 270 {
		t.Fatalf("total = %v", r.TotalTime)
	}

	if len(r.Habits) != 1 {
		t.Fatalf("habits listed = %d", len(r.Habits))
	}
	h := r.Habits[0]
	if h.Completions != 3 || h.RelevantDays != 4 || !h.Rated || h.Rate != 0.75 {
		t.Fatalf("habit rate = %+v", h)
	}
}

func TestComputeRollingMatchesAggregatorOverSameWindow(t *testing.T) {
	c := sampleCollections()
	for _, g := range Granularities {
		r := ComputeRolling(g, c, wednesday)
		pd := CalculateWorkTimeForPeriod(r.Window, c)
		got := r.Details()
		if got.TotalTime != pd.TotalTime || got.TasksTime != pd.TasksTime || got.EventsTime != pd.EventsTime ||
			got.HabitsTime != pd.HabitsTime || got.OKRTime != pd.OKRTime {
			t.Fatalf("%s: rolling %+v != aggregator %+v", g, got, pd)
		}
	}
}

func TestRollingHabitCreatedInFutureIsUnrated(t *testing.T) {
	c := domain.Collections{Habits: []domain.Habit{
		{ID: "later", Name: "Later", EstimatedTime: 10, CreatedAt: "2024-03-20", Completions: map[string]bool{"2024-03-12": true}},
		{ID: "old", Name: "Old", EstimatedTime: 10, CreatedAt: "2023-01-01", Completions: map[string]bool{
			"2024-03-07": true, "2024-03-08": true, "2024-03-13": true, "2024-03-14": true,
		}},
	}}
	r := ComputeRolling(Week, c, wednesday)

	if len(r.Habits) != 2 {
		t.Fatalf("all habits should be listed, got %d", len(r.Habits))
	}
	later, old := r.Habits[0], r.Habits[1]
	if later.Habit.ID != "later" {
		t.Fatalf("habits should be sorted by name, got %s first", later.Habit.ID)
	}
	if later.Rated || later.RelevantDays != 0 || later.Rate != 0 || later.Completions != 0 {
		t.Fatalf("future habit = %+v", later)
	}
	if old.RelevantDays != 7 || old.Completions != 3 {
		t.Fatalf("old habit = %+v", old)
	}

	rated := r.RatedHabits()
	if len(rated) != 1 || rated[0].Habit.ID != "old" {
		t.Fatalf("rated = %+v", rated)
	}
	if r.AverageRate() != 3.0/7.0 {
		t.Fatalf("average rate = %v", r.AverageRate())
	}
}

func TestRollingHabitBadCreationDate(t *testing.T) {
	c := domain.Collections{Habits: []domain.Habit{
		{Name: "Broken", EstimatedTime: 10, CreatedAt: "?", Completions: map[string]bool{"2024-03-12": true}},
	}}
	r := ComputeRolling(Week, c, wednesday)
	if r.HabitsTime != 0 || r.Habits[0].Rated {
		t.Fatalf("broken habit should contribute nothing: %+v", r.Habits[0])
	}
}

func TestRollingEmpty(t *testing.T) {
	r := ComputeRolling(Year, domain.Collections{}, wednesday)
	if r.TotalTime != 0 || r.AverageRate() != 0 || len(r.RatedHabits()) != 0 {
		t.Fatalf("empty rolling = %+v", r)
	}
	if r.Granularity != Year {
		t.Fatalf("granularity = %s", r.Granularity)
	}
}

func TestRelevantDaysClampsToToday(t *testing.T) {
	w := Window{Start: day(2024, 3, 1, utc), End: endOf(2024, 3, 31, utc)}
	today := endOf(2024, 3, 13, utc)
	if got := relevantDays(w, day(2024, 3, 10, utc), today); got != 4 {
		t.Fatalf("relevantDays = %d, want 4", got)
	}
	if got := relevantDays(w, day(2024, 2, 1, utc), today); got != 13 {
		t.Fatalf("relevantDays = %d, want 13", got)
	}
	if got := relevantDays(w, day(2024, 3, 14, utc), today); got != 0 {
		t.Fatalf("relevantDays = %d, want 0", got)
	}
}
