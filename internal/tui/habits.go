package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/sadopc/tempo/internal/store"
)

// stripDays is how many trailing days the completion strip shows.
const stripDays = 7

type habitsModel struct {
	store  *store.Store
	width  int
	height int

	habits []domain.Habit
	rates  map[string]stats.HabitRate // by habit ID, over the rolling week
	now    time.Time
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName    *string
	formMinutes *string
}

func newHabitsModel(s *store.Store) habitsModel {
	name, mins := "", ""
	return habitsModel{
		store:       s,
		formName:    &name,
		formMinutes: &mins,
	}
}

func (h *habitsModel) setSize(width, height int) {
	h.width = width
	h.height = height
}

func (h *habitsModel) compute(m *stats.Memo, cols domain.Collections, clock clockModel) {
	h.habits = cols.Habits
	h.now = clock.now
	h.rates = make(map[string]stats.HabitRate, len(cols.Habits))
	for _, r := range m.Rolling(cols, clock.now, stats.Week).Habits {
		h.rates[r.Habit.ID] = r
	}
	if h.cursor >= len(h.habits) {
		h.cursor = max(0, len(h.habits)-1)
	}
}

func (h habitsModel) today() string {
	return datekey.Key(h.now)
}

func (h habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Up):
			if h.cursor > 0 {
				h.cursor--
			}
		case key.Matches(msg, keys.Down):
			if h.cursor < len(h.habits)-1 {
				h.cursor++
			}
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if len(h.habits) > 0 {
				return h, h.toggleToday(h.habits[h.cursor])
			}
		case key.Matches(msg, keys.New):
			return h.showNewHabitForm()
		}
	}
	return h, nil
}

func (h habitsModel) toggleToday(habit domain.Habit) tea.Cmd {
	today := h.today()
	done := !habit.Completions[today]
	return func() tea.Msg {
		if err := h.store.SetHabitCompletion(habit.ID, today, done); err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		verb := "done"
		if !done {
			verb = "not done"
		}
		return dataChangedMsg{status: fmt.Sprintf("%s marked %s today", habit.Name, verb)}
	}
}

func (h habitsModel) showNewHabitForm() (habitsModel, tea.Cmd) {
	*h.formName = ""
	*h.formMinutes = "15"

	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit Name").Value(h.formName),
			huh.NewInput().Title("Minutes per completion").Value(h.formMinutes).
				Validate(validateMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	h.formActive = true
	return h, h.form.Init()
}

func validateMinutes(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number of minutes")
	}
	return nil
}

func (h habitsModel) updateForm(msg tea.Msg) (habitsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		return h, h.createHabit(*h.formName, *h.formMinutes)
	}
	return h, cmd
}

func (h habitsModel) createHabit(name, minutes string) tea.Cmd {
	createdAt := h.today()
	return func() tea.Msg {
		mins, _ := strconv.ParseFloat(strings.TrimSpace(minutes), 64)
		habit, err := h.store.CreateHabit(domain.Habit{
			Name:          name,
			EstimatedTime: mins,
			CreatedAt:     createdAt,
		})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return dataChangedMsg{status: "Created habit " + habit.Name}
	}
}

func (h habitsModel) view() string {
	w := h.width - 4

	if h.formActive && h.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Habit"), "", h.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Habits") + "  " + mutedStyle.Render("last 7 days")
	if len(h.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No habits yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-22s %-9s %-7s %6s %8s", "", "Name", "Days", "Done", "Rate", "Time")))

	for i, habit := range h.habits {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := mutedStyle.Render("·")
		if habit.Completions[h.today()] {
			mark = successStyle.Render("✓")
		}

		r := h.rates[habit.ID]
		done, rate := "-", mutedStyle.Render("   n/a")
		if r.Rated {
			done = fmt.Sprintf("%d/%d", r.Completions, r.RelevantDays)
			rate = rateStyle(r.Rate).Render(fmt.Sprintf("%6s", formatPercent(r.Rate*100)))
		}

		rows = append(rows, fmt.Sprintf("%s%s %s %s %-7s %s %8s",
			cursor, mark,
			style.Render(fmt.Sprintf("%-22s", truncate(habit.Name, 22))),
			h.strip(habit),
			done,
			rate,
			formatMinutes(r.Minutes),
		))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: toggle today  n: new habit"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// strip shows one cell per trailing day, oldest first.
func (h habitsModel) strip(habit domain.Habit) string {
	y, m, d := h.now.Date()
	var sb strings.Builder
	for i := stripDays - 1; i >= 0; i-- {
		day := datekey.Midnight(y, m, d-i, h.now.Location())
		if habit.Completions[datekey.Key(day)] {
			sb.WriteString(successStyle.Render("■"))
		} else {
			sb.WriteString(mutedStyle.Render("□"))
		}
	}
	return sb.String() + "  "
}

func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 0.8:
		return successStyle
	case rate >= 0.5:
		return warningStyle
	default:
		return errorStyle
	}
}
