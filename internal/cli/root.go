// Package cli wires the tempo command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tempo/internal/config"
	"github.com/sadopc/tempo/internal/domain"
	"github.com/sadopc/tempo/internal/logger"
	"github.com/sadopc/tempo/internal/stats"
	"github.com/sadopc/tempo/internal/store"
	"github.com/sadopc/tempo/internal/tui"
	"github.com/spf13/cobra"
)

// nowFunc is the clock every command samples once per run.
var nowFunc = time.Now

type env struct {
	cfgPath string
	dbPath  string
	cfg     *config.Config
	loc     *time.Location
	logOut  io.Closer
}

// NewRootCmd builds the tempo command. Without a subcommand it starts the TUI.
func NewRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "tempo",
		Short:         "Time invested across tasks, agenda, habits and OKRs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI()
		},
	}
	root.PersistentFlags().StringVar(&e.cfgPath, "config", "", "config file (default ~/.config/tempo/config.toml)")
	root.PersistentFlags().StringVar(&e.dbPath, "db", "", "database path (overrides config)")

	root.AddCommand(
		e.seriesCmd(),
		e.summaryCmd(),
		e.exportCmd(),
		e.importCmd(),
		e.serveCmd(),
		e.configCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func (e *env) setup(cmd *cobra.Command) error {
	path := e.cfgPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if e.dbPath != "" {
		cfg.DBPath = e.dbPath
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	e.cfg, e.loc = cfg, loc

	e.initLogger(cmd)
	logger.Global().Debug().
		Str("command", cmd.Name()).
		Str("config", path).
		Str("db", cfg.DBPath).
		Str("timezone", loc.String()).
		Msg("configured")
	return nil
}

// initLogger points the global logger at stderr, or at the log file when the
// TUI owns the terminal.
func (e *env) initLogger(cmd *cobra.Command) {
	cfg := e.cfg
	if cmd != cmd.Root() {
		logger.Init(cfg.LogLevel, cfg.LogJSON, cmd.ErrOrStderr())
		return
	}
	f, err := logger.OpenFile(cfg.LogFile)
	if err != nil {
		logger.Init(cfg.LogLevel, cfg.LogJSON, io.Discard)
		return
	}
	e.logOut = f
	logger.Init(cfg.LogLevel, cfg.LogJSON, f)
}

func (e *env) close() {
	if e.logOut != nil {
		e.logOut.Close()
		e.logOut = nil
	}
}

func (e *env) now() time.Time {
	return nowFunc().In(e.loc)
}

func (e *env) open() (*store.Store, error) {
	st, err := store.New(e.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", e.cfg.DBPath, err)
	}
	return st, nil
}

func (e *env) snapshot() (domain.Collections, error) {
	st, err := e.open()
	if err != nil {
		return domain.Collections{}, err
	}
	defer st.Close()
	cols, err := st.Snapshot()
	if err != nil {
		return cols, fmt.Errorf("load snapshot: %w", err)
	}
	return cols, nil
}

// selection resolves the granularity and domain flags against config.
func (e *env) selection(gran, dom string) (stats.Granularity, stats.Domain, error) {
	g, d := e.cfg.GranularityValue(), e.cfg.DomainValue()
	var err error
	if gran != "" {
		if g, err = stats.ParseGranularity(gran); err != nil {
			return "", "", err
		}
	}
	if dom != "" {
		if d, err = stats.ParseDomain(dom); err != nil {
			return "", "", err
		}
	}
	return g, d, nil
}

// preferences reads the values saved from the TUI settings view, falling
// back to config for anything missing or malformed.
func (e *env) preferences(st *store.Store) tui.Options {
	opts := tui.Options{
		Location:    e.loc,
		DailyGoal:   e.cfg.DailyGoal,
		Granularity: e.cfg.GranularityValue(),
		Domain:      e.cfg.DomainValue(),
		Refresh:     e.cfg.Refresh(),
		Now:         nowFunc,
	}
	if v, err := st.GetSetting(store.SettingDailyGoal); err == nil {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.DailyGoal = n
		}
	}
	if v, err := st.GetSetting(store.SettingGranularity); err == nil {
		if g, err := stats.ParseGranularity(v); err == nil {
			opts.Granularity = g
		}
	}
	if v, err := st.GetSetting(store.SettingDomain); err == nil {
		if d, err := stats.ParseDomain(v); err == nil {
			opts.Domain = d
		}
	}
	return opts
}

func (e *env) runTUI() error {
	st, err := e.open()
	if err != nil {
		return err
	}
	defer st.Close()

	app := tui.NewApp(st, e.preferences(st))
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// exitCode maps an Execute error to a process status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}

// Main runs the CLI and returns the process exit status.
func Main() int {
	return exitCode(Execute())
}
