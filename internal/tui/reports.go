package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/export"
	"github.com/sadopc/tempo/internal/stats"
)

const axisWidth = 8

type reportsModel struct {
	width  int
	height int

	granularity stats.Granularity
	domain      stats.Domain
	dailyGoal   int

	points []stats.SeriesPoint
	scale  stats.YScale
	goal   float64
	cursor int // selected bucket, defaults to the current one
	report export.Report

	chart barchart.Model
}

func newReportsModel(g stats.Granularity, d stats.Domain, dailyGoal int) reportsModel {
	return reportsModel{
		granularity: g,
		domain:      d,
		dailyGoal:   dailyGoal,
		cursor:      -1,
		chart:       barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

// compute rebuilds the series for the current selection.
func (r *reportsModel) compute(m *stats.Memo, cols domain.Collections, clock clockModel) {
	r.points = m.Series(cols, clock.now, r.granularity, r.domain)
	r.goal = stats.GoalLine(r.granularity, float64(r.dailyGoal))
	r.scale = stats.SmartYScale(float64(stats.SeriesMax(r.points)), r.goal)
	r.report = export.Report{
		Granularity: r.granularity,
		Domain:      r.domain,
		GeneratedAt: clock.now,
		Points:      r.points,
	}
	if r.cursor < 0 || r.cursor >= len(r.points) {
		r.cursor = len(r.points) - 1
	}
	r.buildChart()
}

// selectionChangedMsg asks the app to recompute after a granularity or
// domain switch.
type selectionChangedMsg struct{}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Granularity):
			r.granularity = r.granularity.Next()
			r.cursor = -1
			return r, func() tea.Msg { return selectionChangedMsg{} }
		case key.Matches(msg, keys.Domain):
			r.domain = r.domain.Next()
			return r, func() tea.Msg { return selectionChangedMsg{} }
		case key.Matches(msg, keys.Left):
			if r.cursor > 0 {
				r.cursor--
			}
		case key.Matches(msg, keys.Right):
			if r.cursor < len(r.points)-1 {
				r.cursor++
			}
		}
	}
	return r, nil
}

// barValues stacks the four domains for All and a single bar otherwise.
func (r reportsModel) barValues(p stats.SeriesPoint) []barchart.BarValue {
	if r.domain != stats.All {
		return []barchart.BarValue{{
			Name:  string(r.domain),
			Value: float64(p.TotalTime),
			Style: domainStyle(r.domain),
		}}
	}
	d := p.Details
	parts := []struct {
		dom stats.Domain
		v   float64
	}{
		{stats.Tasks, d.TasksTime},
		{stats.Agenda, d.EventsTime},
		{stats.Habits, d.HabitsTime},
		{stats.OKR, d.OKRTime},
	}
	values := make([]barchart.BarValue, 0, len(parts))
	for _, part := range parts {
		values = append(values, barchart.BarValue{
			Name:  string(part.dom),
			Value: math.Max(part.v, 0),
			Style: domainStyle(part.dom),
		})
	}
	return values
}

func (r reportsModel) chartSize() (int, int) {
	w := r.width - 8 - axisWidth
	if w < 20 {
		w = 20
	}
	h := 12
	if r.height > 30 {
		h = 16
	}
	return w, h
}

// buildChart sizes the chart so the tallest bar sits at its height on the
// Y scale instead of filling the plot.
func (r *reportsModel) buildChart() {
	w, h := r.chartSize()
	if len(r.points) == 0 {
		r.chart = barchart.New(w, h)
		return
	}

	bars := make([]barchart.BarData, 0, len(r.points))
	var tallest float64
	for _, p := range r.points {
		values := r.barValues(p)
		var stack float64
		for _, v := range values {
			stack += v.Value
		}
		tallest = math.Max(tallest, stack)
		bars = append(bars, barchart.BarData{Label: p.Label, Values: values})
	}

	plotRows := h - 2
	rows := 0
	if r.scale.Max > 0 {
		rows = int(math.Round(float64(plotRows) * math.Min(tallest/r.scale.Max, 1)))
	}
	r.chart = barchart.New(w, max(rows, 1)+2)
	r.chart.PushAll(bars)
	r.chart.Draw()
}

// axisRow is the plot row, counted from the top, that holds value v.
func (r reportsModel) axisRow(v float64, plotRows int) int {
	if r.scale.Max <= 0 {
		return plotRows
	}
	return plotRows - int(math.Round(v/r.scale.Max*float64(plotRows)))
}

func formatAxis(v float64) string {
	m := int(math.Round(v))
	switch {
	case m == 0:
		return "0"
	case m%60 == 0:
		return fmt.Sprintf("%dh", m/60)
	case m < 60:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%dh%02d", m/60, m%60)
	}
}

// renderChart draws the Y axis beside the bars, padding the bars up to the
// full plot height.
func (r reportsModel) renderChart() string {
	_, h := r.chartSize()
	plotRows := h - 2

	bars := strings.Split(r.chart.View(), "\n")
	if pad := h - len(bars); pad > 0 {
		bars = append(make([]string, pad), bars...)
	}

	labels := make([]string, h)
	for _, t := range r.scale.Ticks {
		row := r.axisRow(t, plotRows)
		if row >= 0 && row < h {
			labels[row] = axisStyle.Render(fmt.Sprintf("%*s ┤", axisWidth-2, formatAxis(t)))
		}
	}
	if r.goal > 0 {
		if row := r.axisRow(r.goal, plotRows); row >= 0 && row < h {
			labels[row] = accentStyle.Render(fmt.Sprintf("%*s ┤", axisWidth-2, "goal"))
		}
	}
	for i := range labels {
		if labels[i] == "" {
			if i <= plotRows {
				labels[i] = axisStyle.Render(strings.Repeat(" ", axisWidth-1) + "│")
			} else {
				labels[i] = strings.Repeat(" ", axisWidth)
			}
		}
	}

	axis := lipgloss.JoinVertical(lipgloss.Right, labels...)
	return lipgloss.JoinHorizontal(lipgloss.Top, axis, strings.Join(bars, "\n"))
}

func (r reportsModel) view() string {
	w := r.width - 4

	var tabs []string
	for _, g := range stats.Granularities {
		name := strings.ToUpper(string(g)[:1]) + string(g)[1:]
		if g == r.granularity {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "  ",
		domainStyle(r.domain).Render("● "+string(r.domain)),
	)

	if len(r.points) == 0 {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, header, "", mutedStyle.Render("  Loading...")),
		)
	}

	summary := mutedStyle.Render(fmt.Sprintf("  max %s  avg %s  goal %s per bucket",
		formatMinutes(float64(stats.SeriesMax(r.points))),
		formatMinutes(stats.SeriesAverage(r.points)),
		formatMinutes(r.goal),
	))

	nav := mutedStyle.Render("  g: granularity  d: domain  ←/→: select bucket  e: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.renderChart(), "", r.renderLegend(), summary, "", r.renderSelected(), "", nav,
		),
	)
}

func (r reportsModel) renderLegend() string {
	if r.domain != stats.All {
		return ""
	}
	var items []string
	for _, d := range []stats.Domain{stats.Tasks, stats.Agenda, stats.Habits, stats.OKR} {
		items = append(items, domainStyle(d).Render("●")+" "+string(d))
	}
	return "  " + strings.Join(items, "  ")
}

func (r reportsModel) renderSelected() string {
	if r.cursor < 0 || r.cursor >= len(r.points) {
		return ""
	}
	p := r.points[r.cursor]
	d := p.Details

	span := datekey.Key(p.Window.Start)
	if end := datekey.Key(p.Window.End); end != span {
		span += " → " + end
	}
	rows := []string{
		highlightStyle.Render(fmt.Sprintf("  %s  %s", p.Label, span)) + "  " +
			titleStyle.Render(fmt.Sprintf("%dh%02dm", p.Hours, p.Minutes)),
		fmt.Sprintf("  tasks %s (%d done)  agenda %s (%d events)  habits %s  okr %s",
			formatMinutes(d.TasksTime), len(d.CompletedTasks),
			formatMinutes(d.EventsTime), len(d.Events),
			formatMinutes(d.HabitsTime),
			formatMinutes(d.OKRTime),
		),
	}
	return strings.Join(rows, "\n")
}
