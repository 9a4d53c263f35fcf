package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/stats"
)

type dashboardModel struct {
	width  int
	height int

	dailyGoal int
	summaries []stats.RollingSummary // one per stats.Granularities
	empty     bool
}

func newDashboardModel(dailyGoal int) dashboardModel {
	return dashboardModel{dailyGoal: dailyGoal, empty: true}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

// compute fills one rolling summary per granularity.
func (d *dashboardModel) compute(m *stats.Memo, cols domain.Collections, clock clockModel) {
	d.summaries = make([]stats.RollingSummary, 0, len(stats.Granularities))
	for _, g := range stats.Granularities {
		d.summaries = append(d.summaries, m.Rolling(cols, clock.now, g))
	}
	d.empty = cols.Empty()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	if len(d.summaries) == 0 {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}

	var panels []string
	for _, r := range d.summaries {
		panels = append(panels, d.renderRange(r, w))
	}
	if d.empty {
		panels = append(panels, mutedStyle.Render("  Nothing recorded yet. Run `tempo import <file.json>` to load data."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (d dashboardModel) renderRange(r stats.RollingSummary, w int) string {
	goal := stats.GoalLine(r.Granularity, float64(d.dailyGoal))
	pct := stats.Percent(r.TotalTime, goal)

	title := titleStyle.Render(rangeTitle(r.Granularity))
	total := highlightStyle.Render(formatMinutes(r.TotalTime))
	header := fmt.Sprintf("%s  %s", title, total)

	barWidth := min(max(w-40, 10), 40)
	var progress string
	switch {
	case goal <= 0:
		progress = mutedStyle.Render("no daily goal set")
	case pct >= 100:
		progress = goalMetStyle.Render(progressBar(pct, barWidth)) + " " +
			successStyle.Render(fmt.Sprintf("%s of %s", formatPercent(pct), formatMinutes(goal)))
	default:
		progress = goalPendingStyle.Render(progressBar(pct, barWidth)) + " " +
			mutedStyle.Render(fmt.Sprintf("%s of %s", formatPercent(pct), formatMinutes(goal)))
	}

	parts := []string{
		domainStyle(stats.Tasks).Render("tasks " + formatMinutes(r.TasksTime)),
		domainStyle(stats.Agenda).Render("agenda " + formatMinutes(r.EventsTime)),
		domainStyle(stats.Habits).Render("habits " + formatMinutes(r.HabitsTime)),
		domainStyle(stats.OKR).Render("okr " + formatMinutes(r.OKRTime)),
	}
	domains := "  " + strings.Join(parts, mutedStyle.Render(" · "))

	counts := mutedStyle.Render(fmt.Sprintf("  %d tasks done, %d events", len(r.Tasks), len(r.Events)))
	if rated := r.RatedHabits(); len(rated) > 0 {
		counts += mutedStyle.Render(fmt.Sprintf(", habits %s", formatPercent(r.AverageRate()*100)))
	}

	return panelStyle.Padding(0, 2).Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "  "+progress, domains, counts),
	)
}
