package cli

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/spf13/cobra"
)

func (e *env) summaryCmd() *cobra.Command {
	var rng string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize the trailing day, week, month or year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := e.selection(rng, "")
			if err != nil {
				return err
			}
			cols, err := e.snapshot()
			if err != nil {
				return err
			}
			r := stats.ComputeRolling(g, cols, e.now())
			goal := stats.GoalLine(g, float64(e.cfg.DailyGoal))
			if err := printSummary(cmd.OutOrStdout(), r, stats.BreakdownOf(r, cols), goal); err != nil {
				return err
			}
			if cols.Empty() {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "\nNo data yet. Load a snapshot with `tempo import <file>`.")
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&rng, "range", "r", "", "day, week, month or year (default from config)")
	return cmd
}

func printSummary(w io.Writer, r stats.RollingSummary, b stats.Breakdown, goal float64) error {
	var sb strings.Builder

	days := r.Window.Days()
	unit := "days"
	if days == 1 {
		unit = "day"
	}
	fmt.Fprintf(&sb, "Rolling %s: %s to %s (%d %s)\n\n", r.Granularity,
		datekey.Key(r.Window.Start), datekey.Key(r.Window.End), days, unit)
	fmt.Fprintf(&sb, "Total   %s (%s min)\n", formatMinutes(r.TotalTime), humanize.Comma(roundMinutes(r.TotalTime)))
	fmt.Fprintf(&sb, "Tasks   %s\n", formatMinutes(r.TasksTime))
	fmt.Fprintf(&sb, "Agenda  %s\n", formatMinutes(r.EventsTime))
	fmt.Fprintf(&sb, "Habits  %s\n", formatMinutes(r.HabitsTime))
	fmt.Fprintf(&sb, "OKR     %s\n", formatMinutes(r.OKRTime))
	if goal > 0 {
		fmt.Fprintf(&sb, "Goal    %s%% of %s\n",
			humanize.FtoaWithDigits(stats.Percent(r.TotalTime, goal), 1), formatMinutes(goal))
	}

	if rated := r.RatedHabits(); len(rated) > 0 {
		fmt.Fprintf(&sb, "\nHabits (average %s%%)\n", humanize.FtoaWithDigits(r.AverageRate()*100, 1))
		t := table.New().Border(lipgloss.NormalBorder()).Headers("Habit", "Done", "Rate", "Time")
		for _, h := range rated {
			t.Row(
				h.Habit.Name,
				fmt.Sprintf("%d/%d", h.Completions, h.RelevantDays),
				humanize.FtoaWithDigits(h.Rate*100, 1)+"%",
				formatMinutes(h.Minutes),
			)
		}
		sb.WriteString(t.Render())
		sb.WriteString("\n")
	}

	sections := []struct {
		title  string
		slices []stats.Slice
	}{
		{"Categories", b.Categories},
		{"Priorities", b.Priorities},
		{"Event colors", b.Colors},
		{"Objectives", b.Objectives},
	}
	for _, s := range sections {
		if len(s.slices) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n", s.title)
		sb.WriteString(sliceTable(s.slices).Render())
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func sliceTable(slices []stats.Slice) *table.Table {
	t := table.New().Border(lipgloss.NormalBorder()).Headers("Key", "Items", "Time", "Share")
	for _, s := range slices {
		t.Row(
			s.Key,
			humanize.Comma(int64(s.Count)),
			formatMinutes(s.Minutes),
			humanize.FtoaWithDigits(s.Share*100, 1)+"%",
		)
	}
	return t
}

func roundMinutes(m float64) int64 {
	if m <= 0 {
		return 0
	}
	return int64(math.Round(m))
}
