package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/sadopc/tempo/internal/datekey"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/export"
	"github.com/sadopc/tempo/internal/logger"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/sadopc/tempo/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	opts   Options
	memo   *stats.Memo
	clock  clockModel
	log    zerolog.Logger
	width  int
	height int

	cols   domain.Collections
	loaded bool

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	reports   reportsModel
	breakdown breakdownModel
	habits    habitsModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *store.Store, opts Options) App {
	if opts.Granularity == "" {
		opts.Granularity = stats.Week
	}
	if opts.Domain == "" {
		opts.Domain = stats.All
	}

	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		opts:       opts,
		memo:       stats.NewMemo(0),
		clock:      newClockModel(opts.Now, opts.Location, opts.Refresh),
		log:        logger.Component("tui"),
		activeView: viewDashboard,
		dashboard:  newDashboardModel(opts.DailyGoal),
		reports:    newReportsModel(opts.Granularity, opts.Domain, opts.DailyGoal),
		breakdown:  newBreakdownModel(opts.Granularity),
		habits:     newHabitsModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.loadSnapshot(),
		a.settings.refresh(),
		a.clock.tick(),
	)
}

func (a App) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		cols, err := a.store.Snapshot()
		return snapshotMsg{cols: cols, err: err}
	}
}

// recompute refreshes every view from the memo at the sampled clock.
func (a *App) recompute() {
	if !a.loaded {
		return
	}
	a.dashboard.compute(a.memo, a.cols, a.clock)
	a.reports.compute(a.memo, a.cols, a.clock)
	a.breakdown.compute(a.memo, a.cols, a.clock)
	a.habits.compute(a.memo, a.cols, a.clock)

	hits, misses := a.memo.Stats()
	a.log.Debug().
		Str("now", a.clock.bucket).
		Int("hits", hits).
		Int("misses", misses).
		Msg("recomputed")
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.breakdown.setSize(a.width, contentHeight)
		a.habits.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if !a.loaded {
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Refresh):
			return a, a.loadSnapshot()
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReports
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewBreakdown
			return a, nil
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewHabits
			return a, nil
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			if a.activeView == viewSettings {
				return a, a.settings.refresh()
			}
			return a, nil
		}

	case tickMsg:
		cmds := []tea.Cmd{a.clock.tick()}
		if a.clock.sample() {
			// A new minute: reload so writes from other processes show up.
			cmds = append(cmds, a.loadSnapshot())
		}
		return a, tea.Batch(cmds...)

	case snapshotMsg:
		if msg.err != nil {
			a.log.Error().Err(msg.err).Msg("load snapshot")
			a.status, a.statusErr = fmt.Sprintf("Load error: %v", msg.err), true
			return a, nil
		}
		a.cols = msg.cols
		a.loaded = true
		a.recompute()
		return a, nil

	case selectionChangedMsg:
		a.recompute()
		return a, nil

	case dataChangedMsg:
		a.status, a.statusErr = msg.status, false
		return a, a.loadSnapshot()

	case settingsSavedMsg:
		a.applySettings(msg)
		a.status, a.statusErr = "Settings saved", false
		return a, nil

	case statusMsg:
		a.status, a.statusErr = msg.text, msg.isError
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) applySettings(msg settingsSavedMsg) {
	a.opts.DailyGoal = msg.dailyGoal
	a.opts.Granularity = msg.granularity
	a.opts.Domain = msg.domain

	a.dashboard.dailyGoal = msg.dailyGoal
	a.reports.dailyGoal = msg.dailyGoal
	a.reports.granularity = msg.granularity
	a.reports.domain = msg.domain
	a.reports.cursor = -1
	a.breakdown.granularity = msg.granularity
	a.recompute()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewBreakdown:
		a.breakdown, cmd = a.breakdown.update(msg)
	case viewHabits:
		a.habits, cmd = a.habits.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	// Settings data can arrive while another view is active.
	if m, ok := msg.(settingsDataMsg); ok && a.activeView != viewSettings {
		a.settings, cmd = a.settings.update(m)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewHabits:
		return a.habits.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewReports:
		content = a.reports.view()
	case viewBreakdown:
		content = a.breakdown.view()
	case viewHabits:
		content = a.habits.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tempo")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	clock := highlightStyle.Render(" ● " + a.clock.today())

	left := footerStyle.Render(helpView)
	right := clock + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	subtitle := mutedStyle.Render(fmt.Sprintf("%s by %s", a.reports.domain, a.reports.granularity))
	var rows []string
	rows = append(rows, title, subtitle, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor], exportDir())
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func exportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// doExport writes the series currently shown in Reports.
func (a App) doExport(format, dir string) tea.Cmd {
	r := a.reports.report
	log := a.log
	return func() tea.Msg {
		name := fmt.Sprintf("tempo-%s-%s-%s.%s", r.Domain, r.Granularity, datekey.Key(r.GeneratedAt), format)
		path := filepath.Join(dir, name)
		if err := export.ToFile(format, r, path); err != nil {
			log.Error().Err(err).Str("format", format).Msg("export")
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info().Str("path", path).Int("points", len(r.Points)).Msg("exported series")
		return exportDoneMsg{path: path}
	}
}
