package stats

import (
	"sort"
	"strconv"

	"github.com/sadopc/tempo/internal/domain"
)

// Slice is one group of a breakdown.
type Slice struct {
	Key     string  `json:"key"`
	Minutes float64 `json:"minutes"`
	Count   int     `json:"count"`
	Share   float64 `json:"share"` // fraction of the breakdown total, 0..1
}

type accumulator struct {
	order []string
	byKey map[string]*Slice
}

func newAccumulator() *accumulator {
	return &accumulator{byKey: make(map[string]*Slice)}
}

func (a *accumulator) add(key string, minutes float64) {
	s, ok := a.byKey[key]
	if !ok {
		s = &Slice{Key: key}
		a.byKey[key] = s
		a.order = append(a.order, key)
	}
	s.Minutes += minutes
	s.Count++
}

func (a *accumulator) slices() []Slice {
	var total float64
	out := make([]Slice, 0, len(a.order))
	for _, k := range a.order {
		s := *a.byKey[k]
		total += s.Minutes
		out = append(out, s)
	}
	for i := range out {
		if total > 0 {
			out[i].Share = out[i].Minutes / total
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TasksByCategory groups already-filtered completed tasks by category.
func TasksByCategory(tasks []domain.Task) []Slice {
	a := newAccumulator()
	for _, t := range tasks {
		key := t.Category
		if key == "" {
			key = "uncategorized"
		}
		a.add(key, nonNegative(t.EstimatedTime))
	}
	return a.slices()
}

// TasksByPriority groups tasks under "1".."5"; anything else is "0".
func TasksByPriority(tasks []domain.Task) []Slice {
	a := newAccumulator()
	for _, t := range tasks {
		p := t.Priority
		if p < 1 || p > 5 {
			p = 0
		}
		a.add(strconv.Itoa(p), nonNegative(t.EstimatedTime))
	}
	return a.slices()
}

// EventsByColor groups events by colour key using their full duration.
// Events whose duration cannot be computed are skipped.
func EventsByColor(events []domain.Event, w Window) []Slice {
	a := newAccumulator()
	for _, e := range events {
		mins, ok := eventDuration(e, w.Location())
		if !ok {
			continue
		}
		key := e.Color
		if key == "" {
			key = "default"
		}
		a.add(key, mins)
	}
	return a.slices()
}

// ObjectiveEffort is the OKR minutes each objective earned inside w.
// Objectives with no effort in w are omitted.
func ObjectiveEffort(okrs []domain.Objective, w Window) []Slice {
	a := newAccumulator()
	for _, o := range okrs {
		mins := objectiveMinutes(o, w)
		if mins <= 0 {
			continue
		}
		key := o.Title
		if key == "" {
			key = o.ID
		}
		a.add(key, mins)
	}
	return a.slices()
}

// HabitEffort is the minutes each habit earned inside w. Count holds the
// number of counted completions.
func HabitEffort(habits []domain.Habit, w Window) []Slice {
	a := newAccumulator()
	for _, h := range habits {
		n := habitCompletions(h, w)
		if n == 0 {
			continue
		}
		key := h.Name
		if key == "" {
			key = h.ID
		}
		a.add(key, float64(n)*nonNegative(h.EstimatedTime))
		a.byKey[key].Count += n - 1
	}
	return a.slices()
}

// DomainShares splits pd into its four domains. Empty domains are kept so
// the result always has four entries.
func DomainShares(pd PeriodDetails) []Slice {
	a := newAccumulator()
	a.add(string(Tasks), pd.TasksTime)
	a.add(string(Agenda), pd.EventsTime)
	a.add(string(OKR), pd.OKRTime)
	a.add(string(Habits), pd.HabitsTime)
	a.byKey[string(Tasks)].Count = len(pd.CompletedTasks)
	a.byKey[string(Agenda)].Count = len(pd.Events)
	a.byKey[string(OKR)].Count = 0
	a.byKey[string(Habits)].Count = 0
	return a.slices()
}

// Breakdown groups every slicing of one window.
type Breakdown struct {
	Domains    []Slice `json:"domains"`
	Categories []Slice `json:"categories"`
	Priorities []Slice `json:"priorities"`
	Colors     []Slice `json:"colors"`
	Objectives []Slice `json:"objectives"`
	Habits     []Slice `json:"habits"`
}

// BreakdownOf slices a rolling summary. c supplies the OKRs and habits,
// which the summary does not list itself.
func BreakdownOf(r RollingSummary, c domain.Collections) Breakdown {
	return Breakdown{
		Domains:    DomainShares(r.Details()),
		Categories: TasksByCategory(r.Tasks),
		Priorities: TasksByPriority(r.Tasks),
		Colors:     EventsByColor(r.Events, r.Window),
		Objectives: ObjectiveEffort(c.OKRs, r.Window),
		Habits:     HabitEffort(c.Habits, r.Window),
	}
}
