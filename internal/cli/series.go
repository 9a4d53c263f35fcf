package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sadopc/tempo/internal/export"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/spf13/cobra"
)

func (e *env) seriesCmd() *cobra.Command {
	var gran, dom string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Print the time series for a granularity and domain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, d, err := e.selection(gran, dom)
			if err != nil {
				return err
			}
			cols, err := e.snapshot()
			if err != nil {
				return err
			}
			now := e.now()
			pts := stats.BuildSeries(g, cols, now, d)
			if asJSON {
				return export.WriteJSON(export.Report{Granularity: g, Domain: d, GeneratedAt: now, Points: pts}, cmd.OutOrStdout())
			}
			return printSeries(cmd.OutOrStdout(), g, d, pts, stats.GoalLine(g, float64(e.cfg.DailyGoal)))
		},
	}
	addSelectionFlags(cmd, &gran, &dom)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func addSelectionFlags(cmd *cobra.Command, gran, dom *string) {
	cmd.Flags().StringVarP(gran, "granularity", "g", "", "day, week, month or year (default from config)")
	cmd.Flags().StringVarP(dom, "domain", "d", "", "all, tasks, agenda, okr or habits (default from config)")
}

func printSeries(w io.Writer, g stats.Granularity, d stats.Domain, pts []stats.SeriesPoint, goal float64) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Label", "Date", "Total", "Tasks", "Agenda", "Habits", "OKR")
	for _, p := range pts {
		t.Row(
			p.Label,
			p.DateKey,
			fmt.Sprintf("%dh%02dm", p.Hours, p.Minutes),
			formatMinutes(p.Details.TasksTime),
			formatMinutes(p.Details.EventsTime),
			formatMinutes(p.Details.HabitsTime),
			formatMinutes(p.Details.OKRTime),
		)
	}

	_, err := fmt.Fprintf(w, "%s by %s\n%s\nmax %s  avg %s  goal %s\n",
		d, g, t.Render(),
		formatMinutes(float64(stats.SeriesMax(pts))),
		formatMinutes(stats.SeriesAverage(pts)),
		formatMinutes(goal),
	)
	return err
}

// formatMinutes renders minutes as 1h05m; negative input renders as 0h00m.
func formatMinutes(m float64) string {
	total := int(math.Round(m))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%dh%02dm", total/60, total%60)
}
