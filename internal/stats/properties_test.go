package stats

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sadopc/tempo/internal/domain"
)

func propertyZones(t *testing.T) []*time.Location {
	t.Helper()
	zones := []*time.Location{utc, minus5, time.FixedZone("UTC+13", 13*3600)}
	for _, name := range []string{"Europe/Paris", "America/Los_Angeles", "Australia/Sydney"} {
		loc, err := time.LoadLocation(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		zones = append(zones, loc)
	}
	return zones
}

// randomCollections builds a messy snapshot around 2024, including some
// malformed dates, from a seed.
func randomCollections(r *rand.Rand) domain.Collections {
	stamp := func() string {
		if r.Intn(20) == 0 {
			return "not a date"
		}
		ts := time.Date(2024, time.Month(1+r.Intn(12)), 1+r.Intn(28), r.Intn(24), r.Intn(60), 0, 0, time.UTC)
		if r.Intn(2) == 0 {
			return ts.Format(time.RFC3339)
		}
		return ts.Format("2006-01-02T15:04:05")
	}
	key := func() string {
		return fmt.Sprintf("2024-%02d-%02d", 1+r.Intn(12), 1+r.Intn(28))
	}

	var c domain.Collections
	for i := r.Intn(15); i > 0; i-- {
		c.Tasks = append(c.Tasks, domain.Task{
			Completed:     r.Intn(3) > 0,
			CompletedAt:   stamp(),
			EstimatedTime: float64(r.Intn(240)),
			Priority:      1 + r.Intn(5),
		})
	}
	for i := r.Intn(15); i > 0; i-- {
		start := stamp()
		end := start
		if ts, err := time.Parse(time.RFC3339, start); err == nil {
			end = ts.Add(time.Duration(r.Intn(600)) * time.Minute).Format(time.RFC3339)
		}
		c.Events = append(c.Events, domain.Event{Start: start, End: end})
	}
	for i := r.Intn(5); i > 0; i-- {
		h := domain.Habit{EstimatedTime: float64(r.Intn(60)), CreatedAt: key(), Completions: map[string]bool{}}
		for j := r.Intn(40); j > 0; j-- {
			h.Completions[key()] = r.Intn(4) > 0
		}
		c.Habits = append(c.Habits, h)
	}
	for i := r.Intn(4); i > 0; i-- {
		kr := domain.KeyResult{EstimatedTime: float64(r.Intn(30))}
		for j := r.Intn(10); j > 0; j-- {
			kr.History = append(kr.History, domain.HistoryEntry{Date: key(), Increment: float64(r.Intn(7) - 1)})
		}
		c.OKRs = append(c.OKRs, domain.Objective{KeyResults: []domain.KeyResult{kr}})
	}
	return c
}

func TestAggregationProperties(t *testing.T) {
	zones := propertyZones(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total is the exact sum of the four domains", prop.ForAll(
		func(seed int64, month int, zoneIdx int) bool {
			c := randomCollections(rand.New(rand.NewSource(seed)))
			w := PeriodWindow(Month, time.Date(2024, time.Month(month), 1, 0, 0, 0, 0, zones[zoneIdx]))
			pd := CalculateWorkTimeForPeriod(w, c)
			return pd.TotalTime == pd.TasksTime+pd.EventsTime+pd.HabitsTime+pd.OKRTime &&
				pd.TasksTime >= 0 && pd.EventsTime >= 0 && pd.HabitsTime >= 0 && pd.OKRTime >= 0
		},
		gen.Int64(),
		gen.IntRange(1, 12),
		gen.IntRange(0, len(zones)-1),
	))

	properties.Property("month buckets of a year neither overlap nor leave gaps", prop.ForAll(
		func(year int, zoneIdx int) bool {
			loc := zones[zoneIdx]
			yw := PeriodWindow(Year, time.Date(year, 6, 1, 12, 0, 0, 0, loc))
			prev := PeriodWindow(Month, time.Date(year, 1, 1, 12, 0, 0, 0, loc))
			if !prev.Start.Equal(yw.Start) {
				return false
			}
			for m := 2; m <= 12; m++ {
				cur := PeriodWindow(Month, time.Date(year, time.Month(m), 1, 12, 0, 0, 0, loc))
				if !prev.End.Add(time.Millisecond).Equal(cur.Start) {
					return false
				}
				prev = cur
			}
			return prev.End.Equal(yw.End)
		},
		gen.IntRange(1990, 2090),
		gen.IntRange(0, len(zones)-1),
	))

	properties.Property("monthly buckets add up to the yearly bucket", prop.ForAll(
		func(seed int64) bool {
			c := randomCollections(rand.New(rand.NewSource(seed)))
			year := CalculateWorkTimeForPeriod(PeriodWindow(Year, time.Date(2024, 1, 1, 0, 0, 0, 0, utc)), c)
			var sum float64
			for m := 1; m <= 12; m++ {
				sum += CalculateWorkTimeForPeriod(PeriodWindow(Month, time.Date(2024, time.Month(m), 1, 0, 0, 0, 0, utc)), c).TasksTime
			}
			return sum == year.TasksTime
		},
		gen.Int64(),
	))

	properties.Property("y scale always clears the data and the goal", prop.ForAll(
		func(max, ref float64) bool {
			s := SmartYScale(max, ref)
			return s.Max >= max && s.Max >= ref && s.Max >= 15 &&
				s.Step > 0 && s.Ticks[0] == 0 && s.Ticks[len(s.Ticks)-1] == s.Max
		},
		gen.Float64Range(0, 1e6),
		gen.Float64Range(0, 1e6),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
