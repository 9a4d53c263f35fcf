// Package export writes a computed time series to CSV, JSON or XLSX.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/tempo/internal/stats"
)

// Report is one series together with the selection that produced it.
type Report struct {
	Granularity stats.Granularity
	Domain      stats.Domain
	GeneratedAt time.Time
	Points      []stats.SeriesPoint
}

var ErrUnknownFormat = errors.New("unknown export format")

// Formats lists the accepted format names.
var Formats = []string{"csv", "json", "xlsx"}

var header = []string{
	"Label", "Date", "Total (min)", "Hours", "Minutes", "Duration",
	"Tasks (min)", "Agenda (min)", "Habits (min)", "OKR (min)",
	"Completed tasks", "Events",
}

// Write encodes r to w in the named format.
func Write(format string, r Report, w io.Writer) error {
	switch format {
	case "csv":
		return WriteCSV(r, w)
	case "json":
		return WriteJSON(r, w)
	case "xlsx":
		return WriteXLSX(r, w)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ToFile creates path and writes r into it in the named format.
func ToFile(format string, r Report, path string) error {
	switch format {
	case "csv", "json", "xlsx":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", format, err)
	}
	if err := Write(format, r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func minutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDuration(hours, mins int) string {
	return fmt.Sprintf("%dh%02dm", hours, mins)
}

func record(p stats.SeriesPoint) []string {
	d := p.Details
	return []string{
		p.Label,
		p.DateKey,
		strconv.Itoa(p.TotalTime),
		strconv.Itoa(p.Hours),
		strconv.Itoa(p.Minutes),
		formatDuration(p.Hours, p.Minutes),
		minutes(d.TasksTime),
		minutes(d.EventsTime),
		minutes(d.HabitsTime),
		minutes(d.OKRTime),
		strconv.Itoa(len(d.CompletedTasks)),
		strconv.Itoa(len(d.Events)),
	}
}
