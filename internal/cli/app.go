package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/faizmokh/knos/internal/card"
	"github.com/faizmokh/knos/internal/config"
	"github.com/faizmokh/knos/internal/files"
	"github.com/faizmokh/knos/internal/history"
	"github.com/faizmokh/knos/internal/logger"
	"github.com/faizmokh/knos/internal/schedule"
)

// app carries the collaborators every command shares. It is populated by the
// root command's PersistentPreRunE before any subcommand runs.
type app struct {
	home string

	cfg     config.Config
	manager *files.Manager
	log     *logger.Logger
	catalog *card.Catalog
	history *history.Log
	now     func() time.Time
}

func newApp() *app {
	return &app{log: logger.Nop(), now: time.Now}
}

// setup resolves the home directory, loads configuration and wires the
// engine. flags are the executing command's flags.
func (a *app) setup(cmd *cobra.Command) error {
	base, err := files.NewManager(a.home)
	if err != nil {
		return fmt.Errorf("resolve home: %w", err)
	}

	cfg, err := config.Load(base.ConfigPath(), cmd.Flags())
	if err != nil {
		return err
	}

	manager, err := files.NewManager(base.BasePath(), cfg.ManagerOptions()...)
	if err != nil {
		return err
	}
	if err := manager.EnsureLayout(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LoggerOptions(manager.LogPath()))
	if err != nil {
		return err
	}

	a.wire(cfg, manager, log)
	a.log.Debug("knos started", "home", manager.BasePath(), "command", cmd.CommandPath())
	return nil
}

func (a *app) wire(cfg config.Config, manager *files.Manager, log *logger.Logger) {
	a.cfg = cfg
	a.manager = manager
	a.log = log
	a.catalog = card.NewCatalog(manager, card.NewParser(cfg.ParserOptions()))
	a.history = history.NewLog(manager.HistoryPath(), history.WithLogger(log))
}

// openStore loads the schedule, turning corruption into an actionable error.
func (a *app) openStore() (*schedule.Store, error) {
	store, err := schedule.Open(a.manager.SchedulePath(), schedule.WithLogger(a.log), schedule.WithClock(a.now))
	if err != nil {
		var cerr *schedule.CorruptionError
		if errors.As(err, &cerr) {
			a.log.Error("schedule corrupt", "path", cerr.Path, "error", cerr.Err)
			return nil, fmt.Errorf("%w\nrun `knos schedule repair` to rebuild it from history (the current file is kept as a backup)", err)
		}
		return nil, err
	}
	return store, nil
}

func (a *app) close() {
	if a.log != nil {
		a.log.Sync()
	}
}
