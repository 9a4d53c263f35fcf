package stats

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
)

// Domain selects which part of a PeriodDetails a series projects.
type Domain string

const (
	All    Domain = "all"
	Tasks  Domain = "tasks"
	Agenda Domain = "agenda"
	OKR    Domain = "okr"
	Habits Domain = "habits"
)

var Domains = []Domain{All, Tasks, Agenda, OKR, Habits}

var ErrUnknownDomain = errors.New("unknown domain")

func ParseDomain(s string) (Domain, error) {
	switch d := Domain(s); d {
	case All, Tasks, Agenda, OKR, Habits:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
}

// Next cycles through Domains in order.
func (d Domain) Next() Domain {
	for i, v := range Domains {
		if v == d {
			return Domains[(i+1)%len(Domains)]
		}
	}
	return All
}

// SeriesPoint is one bucket of a time series. TotalTime is the selected
// domain's minutes rounded to a whole minute; Details keeps the raw sums.
type SeriesPoint struct {
	Label     string        `json:"label"`
	DateKey   string        `json:"dateKey"`
	TotalTime int           `json:"totalTime"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	Window    Window        `json:"window"`
	Details   PeriodDetails `json:"details"`
}

// BucketCount is the fixed series length for g.
func BucketCount(g Granularity) int {
	switch g {
	case Week, Month:
		return 12
	case Year:
		return 5
	default:
		return 10
	}
}

// BuildSeries returns BucketCount(g) calendar-aligned buckets, oldest first,
// the last one containing now. Buckets use now's location.
func BuildSeries(g Granularity, c domain.Collections, now time.Time, d Domain) []SeriesPoint {
	n := BucketCount(g)
	points := make([]SeriesPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		anchor := bucketAnchor(g, now, i)
		w := PeriodWindow(g, anchor)
		details := CalculateWorkTimeForPeriod(w, c)

		total := int(math.Round(details.TimeFor(d)))
		points = append(points, SeriesPoint{
			Label:     Label(g, w.Start),
			DateKey:   datekey.Key(w.Start),
			TotalTime: total,
			Hours:     total / 60,
			Minutes:   total % 60,
			Window:    w,
			Details:   details,
		})
	}
	return points
}

// bucketAnchor steps back i buckets from now. Months and years step from the
// first of the period so that short months never overflow.
func bucketAnchor(g Granularity, now time.Time, i int) time.Time {
	y, m, d := now.Date()
	loc := now.Location()
	switch g {
	case Week:
		return WeekStart(datekey.Midnight(y, m, d-7*i, loc))
	case Month:
		return datekey.Midnight(y, m-time.Month(i), 1, loc)
	case Year:
		return datekey.Midnight(y-i, time.January, 1, loc)
	default:
		return datekey.Midnight(y, m, d-i, loc)
	}
}

// WeekNumber numbers the week starting at weekStart within its year:
// ceil((days since Jan 1 + weekday of Jan 1 + 1) / 7).
func WeekNumber(weekStart time.Time) int {
	startOfYear := datekey.Midnight(weekStart.Year(), time.January, 1, weekStart.Location())
	days := float64(weekStart.Sub(startOfYear)) / float64(24*time.Hour)
	return int(math.Ceil((days + float64(startOfYear.Weekday()) + 1) / 7))
}

// Label is the display label of the bucket starting at start.
func Label(g Granularity, start time.Time) string {
	switch g {
	case Week:
		return fmt.Sprintf("S%d", WeekNumber(start))
	case Month:
		return start.Format("Jan")
	case Year:
		return start.Format("2006")
	default:
		return start.Format("02/01")
	}
}

// SeriesMax is the largest TotalTime in points.
func SeriesMax(points []SeriesPoint) int {
	best := 0
	for _, p := range points {
		if p.TotalTime > best {
			best = p.TotalTime
		}
	}
	return best
}

// SeriesAverage is the mean TotalTime, 0 for an empty series.
func SeriesAverage(points []SeriesPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += float64(p.TotalTime)
	}
	return sum / float64(len(points))
}

// Percent is 100*part/whole, 0 when whole is not positive.
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return 100 * part / whole
}
