package stats

import (
	"math"
	"time"

	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
)

// PeriodDetails is the aggregate for exactly one window. All times are
// minutes; nothing is rounded here.
type PeriodDetails struct {
	CompletedTasks []domain.Task  `json:"completedTasks"`
	Events         []domain.Event `json:"events"`
	TotalTime      float64        `json:"totalTime"`
	TasksTime      float64        `json:"tasksTime"`
	EventsTime     float64        `json:"eventsTime"`
	HabitsTime     float64        `json:"habitsTime"`
	OKRTime        float64        `json:"okrTime"`
}

// CalculateWorkTimeForPeriod attributes minutes from each domain to w.
// A task counts once completed inside w, an event counts wholly in the
// window holding its start, a habit counts each completion on or after its
// creation day, and a key result counts increment * estimated time.
func CalculateWorkTimeForPeriod(w Window, c domain.Collections) PeriodDetails {
	var pd PeriodDetails

	for _, t := range c.Tasks {
		if mins, ok := taskMinutes(t, w); ok {
			pd.CompletedTasks = append(pd.CompletedTasks, t)
			pd.TasksTime += mins
		}
	}

	for _, e := range c.Events {
		if mins, ok := eventMinutes(e, w); ok {
			pd.Events = append(pd.Events, e)
			pd.EventsTime += mins
		}
	}

	for _, h := range c.Habits {
		pd.HabitsTime += float64(habitCompletions(h, w)) * nonNegative(h.EstimatedTime)
	}

	for _, o := range c.OKRs {
		pd.OKRTime += objectiveMinutes(o, w)
	}

	pd.TotalTime = pd.TasksTime + pd.EventsTime + pd.HabitsTime + pd.OKRTime
	return pd
}

// TimeFor returns the field of pd that d selects; All selects the total.
func (pd PeriodDetails) TimeFor(d Domain) float64 {
	switch d {
	case Tasks:
		return pd.TasksTime
	case Agenda:
		return pd.EventsTime
	case Habits:
		return pd.HabitsTime
	case OKR:
		return pd.OKRTime
	default:
		return pd.TotalTime
	}
}

func taskMinutes(t domain.Task, w Window) (float64, bool) {
	if !t.Completed || t.CompletedAt == "" {
		return 0, false
	}
	at, ok := datekey.ParseIn(t.CompletedAt, w.Location())
	if !ok || !w.Contains(at) {
		return 0, false
	}
	return nonNegative(t.EstimatedTime), true
}

func eventMinutes(e domain.Event, w Window) (float64, bool) {
	start, ok := datekey.ParseIn(e.Start, w.Location())
	if !ok || !w.Contains(start) {
		return 0, false
	}
	mins, ok := eventDuration(e, w.Location())
	if !ok {
		return 0, false
	}
	return mins, true
}

// eventDuration is end - start in minutes. Unparseable or inverted ranges
// are rejected.
func eventDuration(e domain.Event, loc *time.Location) (float64, bool) {
	start, ok := datekey.ParseIn(e.Start, loc)
	if !ok {
		return 0, false
	}
	end, ok := datekey.ParseIn(e.End, loc)
	if !ok {
		return 0, false
	}
	d := end.Sub(start)
	if d < 0 {
		return 0, false
	}
	return d.Minutes(), true
}

// habitCreatedDay is midnight of the habit's creation day in loc.
func habitCreatedDay(h domain.Habit, loc *time.Location) (time.Time, bool) {
	created, ok := datekey.ParseIn(h.CreatedAt, loc)
	if !ok {
		return time.Time{}, false
	}
	return datekey.StartOfDay(created), true
}

// habitCompletions counts the distinct days with a true completion key inside
// w and on or after the habit's creation day. Keys naming the same local day
// count once. A habit with an unparseable creation date counts 0.
func habitCompletions(h domain.Habit, w Window) int {
	created, ok := habitCreatedDay(h, w.Location())
	if !ok {
		return 0
	}
	days := make(map[string]struct{}, len(h.Completions))
	for key, done := range h.Completions {
		if !done {
			continue
		}
		day, ok := datekey.ParseIn(key, w.Location())
		if !ok {
			continue
		}
		day = datekey.StartOfDay(day)
		if w.Contains(day) && !day.Before(created) {
			days[datekey.Key(day)] = struct{}{}
		}
	}
	return len(days)
}

func keyResultMinutes(kr domain.KeyResult, w Window) float64 {
	var sum float64
	for _, h := range kr.History {
		day, ok := datekey.ParseIn(h.Date, w.Location())
		if !ok || !w.Contains(day) {
			continue
		}
		sum += h.Increment
	}
	return nonNegative(sum * kr.EstimatedTime)
}

func objectiveMinutes(o domain.Objective, w Window) float64 {
	var total float64
	for _, kr := range o.KeyResults {
		total += keyResultMinutes(kr, w)
	}
	return total
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
