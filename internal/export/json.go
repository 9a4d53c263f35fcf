package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

type jsonExport struct {
	ExportedAt  string      `json:"exported_at"`
	Granularity string      `json:"granularity"`
	Domain      string      `json:"domain"`
	Count       int         `json:"count"`
	Points      []jsonPoint `json:"points"`
}

type jsonPoint struct {
	Label          string  `json:"label"`
	Date           string  `json:"date"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	TotalMinutes   int     `json:"total_minutes"`
	Hours          int     `json:"hours"`
	Minutes        int     `json:"minutes"`
	Duration       string  `json:"duration"`
	TasksMinutes   float64 `json:"tasks_minutes"`
	AgendaMinutes  float64 `json:"agenda_minutes"`
	HabitsMinutes  float64 `json:"habits_minutes"`
	OKRMinutes     float64 `json:"okr_minutes"`
	CompletedTasks int     `json:"completed_tasks"`
	Events         int     `json:"events"`
}

// WriteJSON writes r as an indented document.
func WriteJSON(r Report, w io.Writer) error {
	generated := r.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	export := jsonExport{
		ExportedAt:  generated.UTC().Format(time.RFC3339),
		Granularity: string(r.Granularity),
		Domain:      string(r.Domain),
		Count:       len(r.Points),
	}

	for _, p := range r.Points {
		export.Points = append(export.Points, jsonPoint{
			Label:          p.Label,
			Date:           p.DateKey,
			Start:          p.Window.Start.Format(time.RFC3339),
			End:            p.Window.End.Format(time.RFC3339Nano),
			TotalMinutes:   p.TotalTime,
			Hours:          p.Hours,
			Minutes:        p.Minutes,
			Duration:       formatDuration(p.Hours, p.Minutes),
			TasksMinutes:   p.Details.TasksTime,
			AgendaMinutes:  p.Details.EventsTime,
			HabitsMinutes:  p.Details.HabitsTime,
			OKRMinutes:     p.Details.OKRTime,
			CompletedTasks: len(p.Details.CompletedTasks),
			Events:         len(p.Details.Events),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
