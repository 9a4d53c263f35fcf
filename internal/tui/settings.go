package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/sadopc/tempo/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	dailyGoal   *string
	granularity *string
	domain      *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dg, g, d := "", "", ""
	return settingsModel{
		store:       s,
		dailyGoal:   &dg,
		granularity: &g,
		domain:      &d,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.dailyGoal = s.getVal(store.SettingDailyGoal, "480")
	*s.granularity = s.getVal(store.SettingGranularity, string(stats.Week))
	*s.domain = s.getVal(store.SettingDomain, string(stats.All))

	granularityOptions := make([]huh.Option[string], len(stats.Granularities))
	for i, g := range stats.Granularities {
		granularityOptions[i] = huh.NewOption(string(g), string(g))
	}
	domainOptions := make([]huh.Option[string], len(stats.Domains))
	for i, d := range stats.Domains {
		domainOptions[i] = huh.NewOption(string(d), string(d))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (minutes)").Value(s.dailyGoal).
				Validate(validateGoal),
			huh.NewSelect[string]().Title("Default granularity").
				Options(granularityOptions...).Value(s.granularity),
			huh.NewSelect[string]().Title("Default domain").
				Options(domainOptions...).Value(s.domain),
		).Title("Statistics"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateGoal(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of minutes, 0 or more")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		saved, err := s.saveSettings()
		if err != nil {
			return s, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return saved })
	}

	return s, cmd
}

// saveSettings persists the form values and returns them parsed.
func (s settingsModel) saveSettings() (settingsSavedMsg, error) {
	goal, err := strconv.Atoi(strings.TrimSpace(*s.dailyGoal))
	if err != nil || goal < 0 {
		return settingsSavedMsg{}, fmt.Errorf("invalid daily goal %q", *s.dailyGoal)
	}
	g, err := stats.ParseGranularity(*s.granularity)
	if err != nil {
		return settingsSavedMsg{}, err
	}
	d, err := stats.ParseDomain(*s.domain)
	if err != nil {
		return settingsSavedMsg{}, err
	}

	values := map[string]string{
		store.SettingDailyGoal:   strconv.Itoa(goal),
		store.SettingGranularity: string(g),
		store.SettingDomain:      string(d),
	}
	for k, v := range values {
		if err := s.store.SetSetting(k, v); err != nil {
			return settingsSavedMsg{}, err
		}
	}
	return settingsSavedMsg{dailyGoal: goal, granularity: g, domain: d}, nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	if k == store.SettingDailyGoal {
		if mins, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min (%s)", mins, formatMinutes(float64(mins)))
		}
	}
	return v
}
