package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/stats"
)

// maxSliceRows caps each breakdown section.
const maxSliceRows = 5

type breakdownModel struct {
	width  int
	height int

	granularity stats.Granularity
	summary     stats.RollingSummary
	breakdown   stats.Breakdown
	loaded      bool
}

func newBreakdownModel(g stats.Granularity) breakdownModel {
	return breakdownModel{granularity: g}
}

func (b *breakdownModel) setSize(w, h int) {
	b.width = w
	b.height = h
}

func (b *breakdownModel) compute(m *stats.Memo, cols domain.Collections, clock clockModel) {
	b.summary = m.Rolling(cols, clock.now, b.granularity)
	b.breakdown = stats.BreakdownOf(b.summary, cols)
	b.loaded = true
}

func (b breakdownModel) update(msg tea.Msg) (breakdownModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Granularity), key.Matches(msg, keys.Right):
			b.granularity = b.granularity.Next()
			return b, func() tea.Msg { return selectionChangedMsg{} }
		case key.Matches(msg, keys.Left):
			b.granularity = previousGranularity(b.granularity)
			return b, func() tea.Msg { return selectionChangedMsg{} }
		}
	}
	return b, nil
}

func previousGranularity(g stats.Granularity) stats.Granularity {
	n := len(stats.Granularities)
	for i, v := range stats.Granularities {
		if v == g {
			return stats.Granularities[(i+n-1)%n]
		}
	}
	return stats.Day
}

func (b breakdownModel) view() string {
	w := b.width - 4
	if !b.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}

	win := b.summary.Window
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Breakdown"), "  ",
		highlightStyle.Render(rangeTitle(b.granularity)), "  ",
		mutedStyle.Render(fmt.Sprintf("%s → %s  %s", datekey.Key(win.Start), datekey.Key(win.End), formatMinutes(b.summary.TotalTime))),
	)

	colWidth := w/2 - 2
	barWidth := min(max(colWidth-32, 8), 24)
	sections := []struct {
		title  string
		slices []stats.Slice
		label  func(string) string
	}{
		{"Domains", b.breakdown.Domains, nil},
		{"Task categories", b.breakdown.Categories, nil},
		{"Task priorities", b.breakdown.Priorities, func(k string) string { return "P" + k }},
		{"Event colors", b.breakdown.Colors, nil},
		{"Objectives", b.breakdown.Objectives, nil},
		{"Habits", b.breakdown.Habits, nil},
	}

	left, right := []string{}, []string{}
	for i, s := range sections {
		block := renderSlices(s.title, s.slices, s.label, barWidth)
		if i%2 == 0 {
			left = append(left, block)
		} else {
			right = append(right, block)
		}
	}
	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(colWidth).Render(strings.Join(left, "\n\n")),
		lipgloss.NewStyle().Width(colWidth).Render(strings.Join(right, "\n\n")),
	)

	nav := mutedStyle.Render("  ←/→ or g: range")
	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", columns, "", nav),
	)
}

func renderSlices(title string, slices []stats.Slice, label func(string) string, barWidth int) string {
	rows := []string{titleStyle.Render(title)}
	if len(slices) == 0 {
		return strings.Join(append(rows, mutedStyle.Render("  nothing in range")), "\n")
	}
	for i, s := range slices {
		if i == maxSliceRows {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  +%d more", len(slices)-maxSliceRows)))
			break
		}
		name := s.Key
		if label != nil {
			name = label(name)
		}
		style := domainStyle(stats.Domain(s.Key))
		rows = append(rows, fmt.Sprintf("  %-14s %s %4s %s",
			truncate(name, 14),
			style.Render(progressBar(s.Share*100, barWidth)),
			formatPercent(s.Share*100),
			mutedStyle.Render(formatMinutes(s.Minutes)),
		))
	}
	return strings.Join(rows, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
