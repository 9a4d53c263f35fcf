package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/stats"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewReports
	viewBreakdown
	viewHabits
	viewSettings
)

var viewNames = []string{"Dashboard", "Reports", "Breakdown", "Habits", "Settings"}

// Options carries the preferences the app starts with.
type Options struct {
	Location    *time.Location
	DailyGoal   int // minutes
	Granularity stats.Granularity
	Domain      stats.Domain
	Refresh     time.Duration
	Now         func() time.Time
}

// --- Messages ---

type snapshotMsg struct {
	cols domain.Collections
	err  error
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// dataChangedMsg asks the app to reload the snapshot after a write.
type dataChangedMsg struct {
	status string
}

type settingsSavedMsg struct {
	dailyGoal   int
	granularity stats.Granularity
	domain      stats.Domain
}

// --- Helpers ---

// formatMinutes renders minutes as 2h05m.
func formatMinutes(m float64) string {
	total := int(math.Round(m))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dh%02dm", total/60, total%60)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// progressBar fills width cells in proportion to pct, capped at 100.
func progressBar(pct float64, width int) string {
	if width < 1 {
		return ""
	}
	if pct < 0 || math.IsNaN(pct) {
		pct = 0
	}
	filled := int(math.Round(math.Min(pct, 100) / 100 * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// rangeTitle names the rolling window of g.
func rangeTitle(g stats.Granularity) string {
	switch g {
	case stats.Week:
		return "Last 7 days"
	case stats.Month:
		return "Last 30 days"
	case stats.Year:
		return "Last 365 days"
	default:
		return "Today"
	}
}
