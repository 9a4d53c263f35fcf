package stats

import (
	"sort"
	"time"

	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
)

// RollingDays is the length in days of the trailing window for g.
func RollingDays(g Granularity) int {
	switch g {
	case Week:
		return 7
	case Month:
		return 30
	case Year:
		return 365
	default:
		return 1
	}
}

// RollingRange is the trailing window of RollingDays(g) days ending at the
// end of today. Unlike PeriodWindow it is never snapped to calendar
// boundaries.
func RollingRange(g Granularity, now time.Time) Window {
	y, m, d := now.Date()
	loc := now.Location()
	return Window{
		Start: datekey.Midnight(y, m, d-(RollingDays(g)-1), loc),
		End:   datekey.EndOfDay(now),
	}
}

// HabitRate is one habit's activity inside a rolling window. RelevantDays
// counts days the habit could have been done: on or after creation and not
// in the future. Rated is false when there are no such days; Rate is then 0
// and the habit should be left out of rate displays.
type HabitRate struct {
	Habit        domain.Habit `json:"habit"`
	Completions  int          `json:"completions"`
	Minutes      float64      `json:"minutes"`
	RelevantDays int          `json:"relevantDays"`
	Rated        bool         `json:"rated"`
	Rate         float64      `json:"rate"`
}

// RollingSummary aggregates the raw collections over a rolling window.
type RollingSummary struct {
	Granularity Granularity    `json:"granularity"`
	Window      Window         `json:"window"`
	Tasks       []domain.Task  `json:"tasks"`
	Events      []domain.Event `json:"events"`
	TasksTime   float64        `json:"tasksTime"`
	EventsTime  float64        `json:"eventsTime"`
	HabitsTime  float64        `json:"habitsTime"`
	OKRTime     float64        `json:"okrTime"`
	TotalTime   float64        `json:"totalTime"`
	Habits      []HabitRate    `json:"habits"`
}

// Details views the summary as a PeriodDetails.
func (r RollingSummary) Details() PeriodDetails {
	return PeriodDetails{
		CompletedTasks: r.Tasks,
		Events:         r.Events,
		TotalTime:      r.TotalTime,
		TasksTime:      r.TasksTime,
		EventsTime:     r.EventsTime,
		HabitsTime:     r.HabitsTime,
		OKRTime:        r.OKRTime,
	}
}

// ComputeRolling walks the collections once over RollingRange(g, now).
func ComputeRolling(g Granularity, c domain.Collections, now time.Time) RollingSummary {
	w := RollingRange(g, now)
	r := RollingSummary{Granularity: g, Window: w}

	for _, t := range c.Tasks {
		if mins, ok := taskMinutes(t, w); ok {
			r.Tasks = append(r.Tasks, t)
			r.TasksTime += mins
		}
	}

	for _, e := range c.Events {
		if mins, ok := eventMinutes(e, w); ok {
			r.Events = append(r.Events, e)
			r.EventsTime += mins
		}
	}

	today := datekey.EndOfDay(now)
	for _, h := range c.Habits {
		hr := rollingHabit(h, w, today)
		r.HabitsTime += hr.Minutes
		r.Habits = append(r.Habits, hr)
	}
	sort.SliceStable(r.Habits, func(i, j int) bool {
		return r.Habits[i].Habit.Name < r.Habits[j].Habit.Name
	})

	for _, o := range c.OKRs {
		r.OKRTime += objectiveMinutes(o, w)
	}

	r.TotalTime = r.TasksTime + r.EventsTime + r.HabitsTime + r.OKRTime
	return r
}

func rollingHabit(h domain.Habit, w Window, today time.Time) HabitRate {
	hr := HabitRate{Habit: h}
	hr.Completions = habitCompletions(h, w)
	hr.Minutes = float64(hr.Completions) * nonNegative(h.EstimatedTime)

	created, ok := habitCreatedDay(h, w.Location())
	if !ok {
		return hr
	}
	hr.RelevantDays = relevantDays(w, created, today)
	if hr.RelevantDays > 0 {
		hr.Rated = true
		hr.Rate = float64(hr.Completions) / float64(hr.RelevantDays)
	}
	return hr
}

// relevantDays counts the calendar days of
// [max(w.Start, created), min(w.End, today)], 0 when that is empty.
func relevantDays(w Window, created, today time.Time) int {
	start := w.Start
	if created.After(start) {
		start = created
	}
	end := w.End
	if today.Before(end) {
		end = today
	}
	if start.After(end) {
		return 0
	}
	return datekey.DaysBetween(start, end) + 1
}

// RatedHabits filters r.Habits down to those with relevant days.
func (r RollingSummary) RatedHabits() []HabitRate {
	var out []HabitRate
	for _, h := range r.Habits {
		if h.Rated {
			out = append(out, h)
		}
	}
	return out
}

// AverageRate is the mean Rate over rated habits, 0 when none are rated.
func (r RollingSummary) AverageRate() float64 {
	rated := r.RatedHabits()
	if len(rated) == 0 {
		return 0
	}
	var sum float64
	for _, h := range rated {
		sum += h.Rate
	}
	return sum / float64(len(rated))
}
