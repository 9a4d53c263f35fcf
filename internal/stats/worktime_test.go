package stats

import (
	"testing"

	"github.com/sadopc/tempo/internal/domain"
)

func march2024() Window { return PeriodWindow(Month, day(2024, 3, 1, utc)) }
func april2024() Window { return PeriodWindow(Month, day(2024, 4, 1, utc)) }

// ============================================================
// Tasks
// ============================================================

func TestTaskAttributedToCompletionMonth(t *testing.T) {
	c := domain.Collections{Tasks: []domain.Task{
		{ID: "t1", Completed: true, CompletedAt: "2024-03-15T10:00:00Z", EstimatedTime: 45},
	}}

	march := CalculateWorkTimeForPeriod(march2024(), c)
	if march.TasksTime != 45 || len(march.CompletedTasks) != 1 {
		t.Fatalf("march: tasksTime=%v tasks=%d", march.TasksTime, len(march.CompletedTasks))
	}

	april := CalculateWorkTimeForPeriod(april2024(), c)
	if april.TasksTime != 0 || len(april.CompletedTasks) != 0 {
		t.Fatalf("april: tasksTime=%v tasks=%d", april.TasksTime, len(april.CompletedTasks))
	}
}

func TestTaskRequiresCompletedAndTimestamp(t *testing.T) {
	c := domain.Collections{Tasks: []domain.Task{
		{ID: "open", Completed: false, CompletedAt: "2024-03-15T10:00:00Z", EstimatedTime: 30},
		{ID: "no-ts", Completed: true, EstimatedTime: 30},
		{ID: "bad-ts", Completed: true, CompletedAt: "yesterday", EstimatedTime: 30},
		{ID: "ok", Completed: true, CompletedAt: "2024-03-20", EstimatedTime: 15},
		{ID: "negative", Completed: true, CompletedAt: "2024-03-21", EstimatedTime: -50},
	}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.TasksTime != 15 {
		t.Fatalf("tasksTime = %v, want 15", pd.TasksTime)
	}
	if len(pd.CompletedTasks) != 2 {
		t.Fatalf("expected ok and negative to be listed, got %d", len(pd.CompletedTasks))
	}
}

// ============================================================
// Events
// ============================================================

func TestEventCrossingMidnightStaysInStartBucket(t *testing.T) {
	c := domain.Collections{Events: []domain.Event{
		{ID: "e1", Start: "2024-03-01T23:00:00", End: "2024-03-02T01:00:00"},
	}}

	first := CalculateWorkTimeForPeriod(PeriodWindow(Day, day(2024, 3, 1, utc)), c)
	if first.EventsTime != 120 || len(first.Events) != 1 {
		t.Fatalf("march 1: eventsTime=%v events=%d", first.EventsTime, len(first.Events))
	}

	second := CalculateWorkTimeForPeriod(PeriodWindow(Day, day(2024, 3, 2, utc)), c)
	if second.EventsTime != 0 || len(second.Events) != 0 {
		t.Fatalf("march 2 should be empty, got %v", second.EventsTime)
	}
}

func TestEventMalformedOrInvertedSkipped(t *testing.T) {
	c := domain.Collections{Events: []domain.Event{
		{ID: "bad-start", Start: "nope", End: "2024-03-02T01:00:00"},
		{ID: "bad-end", Start: "2024-03-02T01:00:00", End: ""},
		{ID: "inverted", Start: "2024-03-02T03:00:00", End: "2024-03-02T01:00:00"},
		{ID: "ok", Start: "2024-03-02T09:00:00Z", End: "2024-03-02T09:30:00Z"},
	}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.EventsTime != 30 || len(pd.Events) != 1 || pd.Events[0].ID != "ok" {
		t.Fatalf("eventsTime=%v events=%+v", pd.EventsTime, pd.Events)
	}
}

// ============================================================
// Habits
// ============================================================

func TestHabitCompletionsBeforeCreationExcluded(t *testing.T) {
	c := domain.Collections{Habits: []domain.Habit{{
		ID:            "h1",
		EstimatedTime: 20,
		CreatedAt:     "2024-03-10",
		Completions:   map[string]bool{"2024-03-05": true, "2024-03-12": true},
	}}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.HabitsTime != 20 {
		t.Fatalf("habitsTime = %v, want 20", pd.HabitsTime)
	}
}

func TestHabitCreatedMidDayCountsThatDay(t *testing.T) {
	c := domain.Collections{Habits: []domain.Habit{{
		EstimatedTime: 10,
		CreatedAt:     "2024-03-10T18:45:00Z",
		Completions:   map[string]bool{"2024-03-10": true, "2024-03-11": true, "2024-03-12": false},
	}}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.HabitsTime != 20 {
		t.Fatalf("habitsTime = %v, want 20", pd.HabitsTime)
	}
}

func TestHabitKeysAreLocalDays(t *testing.T) {
	// In UTC-5 the key 2024-03-01 must land on March 1, not Feb 29.
	c := domain.Collections{Habits: []domain.Habit{{
		EstimatedTime: 5,
		CreatedAt:     "2024-01-01",
		Completions:   map[string]bool{"2024-03-01": true},
	}}}
	feb := CalculateWorkTimeForPeriod(PeriodWindow(Day, day(2024, 2, 29, minus5)), c)
	mar := CalculateWorkTimeForPeriod(PeriodWindow(Day, day(2024, 3, 1, minus5)), c)
	if feb.HabitsTime != 0 || mar.HabitsTime != 5 {
		t.Fatalf("feb29=%v mar1=%v", feb.HabitsTime, mar.HabitsTime)
	}
}

func TestHabitSameDayKeysCountOnce(t *testing.T) {
	c := domain.Collections{Habits: []domain.Habit{{
		EstimatedTime: 20,
		CreatedAt:     "2024-03-01",
		Completions: map[string]bool{
			"2024-03-12":           true,
			"2024-03-12T08:00:00":  true,
			"2024-03-12T20:30:00Z": true,
			"2024-03-13":           true,
		},
	}}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.HabitsTime != 40 {
		t.Fatalf("habitsTime = %v, want 40", pd.HabitsTime)
	}
	r := ComputeRolling(Week, c, day(2024, 3, 13, utc))
	if len(r.Habits) != 1 || r.Habits[0].Completions != 2 {
		t.Fatalf("rolling completions = %+v", r.Habits)
	}
}

func TestHabitBadDatesSkipped(t *testing.T) {
	c := domain.Collections{Habits: []domain.Habit{
		{EstimatedTime: 10, CreatedAt: "garbage", Completions: map[string]bool{"2024-03-12": true}},
		{EstimatedTime: 10, CreatedAt: "2024-01-01", Completions: map[string]bool{"03/12/2024": true, "2024-03-13": true}},
	}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.HabitsTime != 10 {
		t.Fatalf("habitsTime = %v, want 10", pd.HabitsTime)
	}
}

// ============================================================
// OKRs
// ============================================================

func okrFixture() domain.Collections {
	return domain.Collections{OKRs: []domain.Objective{{
		ID:    "o1",
		Title: "Ship v2",
		KeyResults: []domain.KeyResult{{
			ID:            "kr1",
			EstimatedTime: 10,
			History: []domain.HistoryEntry{
				{Date: "2024-03-01", Increment: 3},
				{Date: "2024-04-01", Increment: 2},
			},
		}},
	}}}
}

func TestOKRIncrements(t *testing.T) {
	c := okrFixture()
	if got := CalculateWorkTimeForPeriod(march2024(), c).OKRTime; got != 30 {
		t.Fatalf("march okrTime = %v, want 30", got)
	}
	h1 := Window{Start: day(2024, 1, 1, utc), End: endOf(2024, 6, 30, utc)}
	if got := CalculateWorkTimeForPeriod(h1, c).OKRTime; got != 50 {
		t.Fatalf("jan-jun okrTime = %v, want 50", got)
	}
}

func TestOKRMultipleKeyResultsAndNegativeNet(t *testing.T) {
	c := domain.Collections{OKRs: []domain.Objective{{
		KeyResults: []domain.KeyResult{
			{EstimatedTime: 15, History: []domain.HistoryEntry{{Date: "2024-03-02", Increment: 2}, {Date: "bad", Increment: 9}}},
			{EstimatedTime: 5, History: []domain.HistoryEntry{{Date: "2024-03-03", Increment: 1}, {Date: "2024-03-04", Increment: -4}}},
		},
	}}}
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.OKRTime != 30 {
		t.Fatalf("okrTime = %v, want 30", pd.OKRTime)
	}
}

// ============================================================
// Totals
// ============================================================

func TestEmptyCollectionsYieldZero(t *testing.T) {
	pd := CalculateWorkTimeForPeriod(march2024(), domain.Collections{})
	if pd.TotalTime != 0 || pd.TasksTime != 0 || pd.EventsTime != 0 || pd.HabitsTime != 0 || pd.OKRTime != 0 {
		t.Fatalf("expected zeros, got %+v", pd)
	}
	if pd.CompletedTasks != nil || pd.Events != nil {
		t.Fatal("expected nil lists")
	}
}

func TestTotalIsSumOfDomains(t *testing.T) {
	c := sampleCollections()
	pd := CalculateWorkTimeForPeriod(march2024(), c)
	if pd.TotalTime != pd.TasksTime+pd.EventsTime+pd.HabitsTime+pd.OKRTime {
		t.Fatalf("total %v != parts %+v", pd.TotalTime, pd)
	}
	if pd.TasksTime == 0 || pd.EventsTime == 0 || pd.HabitsTime == 0 || pd.OKRTime == 0 {
		t.Fatalf("fixture should touch every domain in march: %+v", pd)
	}
}

func TestTimeForSelectsDomain(t *testing.T) {
	pd := PeriodDetails{TotalTime: 100, TasksTime: 10, EventsTime: 20, HabitsTime: 30, OKRTime: 40}
	tests := map[Domain]float64{All: 100, Tasks: 10, Agenda: 20, Habits: 30, OKR: 40, Domain("x"): 100}
	for d, want := range tests {
		if got := pd.TimeFor(d); got != want {
			t.Errorf("TimeFor(%q) = %v, want %v", d, got, want)
		}
	}
}

// sampleCollections touches every domain in March 2024 (UTC).
func sampleCollections() domain.Collections {
	c := okrFixture()
	c.Tasks = []domain.Task{
		{ID: "t1", Name: "Write report", Category: "work", Priority: 1, Completed: true, CompletedAt: "2024-03-04T09:00:00Z", EstimatedTime: 60},
		{ID: "t2", Name: "Groceries", Category: "home", Priority: 3, Completed: true, CompletedAt: "2024-03-13T18:00:00Z", EstimatedTime: 30},
		{ID: "t3", Name: "Review", Category: "work", Priority: 2, Completed: true, CompletedAt: "2024-03-13T11:00:00Z", EstimatedTime: 45},
		{ID: "t4", Name: "Someday", Category: "work", Priority: 5, Completed: false, EstimatedTime: 500},
	}
	c.Events = []domain.Event{
		{ID: "e1", Title: "Standup", Start: "2024-03-12T09:00:00Z", End: "2024-03-12T09:15:00Z", Color: "blue"},
		{ID: "e2", Title: "Workshop", Start: "2024-03-13T14:00:00Z", End: "2024-03-13T16:00:00Z", Color: "green"},
	}
	c.Habits = []domain.Habit{{
		ID:            "h1",
		Name:          "Reading",
		EstimatedTime: 20,
		CreatedAt:     "2024-03-10",
		Completions:   map[string]bool{"2024-03-05": true, "2024-03-11": true, "2024-03-12": true, "2024-03-13": true},
	}}
	return c
}
