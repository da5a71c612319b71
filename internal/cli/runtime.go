package cli

import (
	"errors"
	"fmt"

	"github.com/soyeahso/adlad/internal/config"
	"github.com/soyeahso/adlad/internal/coordinator"
	"github.com/soyeahso/adlad/internal/hooks"
	"github.com/soyeahso/adlad/internal/logging"
	"github.com/soyeahso/adlad/internal/plugin"
	"github.com/soyeahso/adlad/internal/plugins"
	"github.com/soyeahso/adlad/internal/store"
)

// loadConfig loads the config file, applies command line overrides and
// validates the result. Unless --log-level was given, the root logger is
// rebuilt from the logging section.
func loadConfig(cmdLog *logging.Logger, overrides ...func(*config.Config)) (config.Config, *logging.Logger, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return cfg, cmdLog, err
	}
	for _, o := range overrides {
		o(&cfg)
	}

	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			cmdLog.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, cmdLog, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}

	if logLevel == "" {
		cmdLog = logging.NewStyled(nil, cfg.Logging.Level, cfg.Logging.ConsoleStyle)
	}
	return cfg, cmdLog, nil
}

// runtime is the set of components shared by show and gateway run.
type runtime struct {
	plugins *plugin.Registry
	hooks   *hooks.Manager
	history store.History
	coord   *coordinator.Coordinator

	db  *store.DB
	log *logging.Logger
}

// openHistory opens the history store selected by cfg.
func openHistory(cfg config.HistoryConfig, log *logging.Logger) (store.History, *store.DB, error) {
	if cfg.Store == "memory" {
		log.Debug().Msg("using in-memory ad history")
		return store.NewMemoryHistory(cfg.Limit), nil, nil
	}
	db, err := store.Open(paths.History, log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	return store.NewSQLiteHistory(db), db, nil
}

// newRuntime builds the plugin registry, selects the active plugin and
// starts a coordinator for it. pluginName overrides cfg.Plugin when set.
func newRuntime(cfg config.Config, pluginName string, log *logging.Logger) (*runtime, error) {
	reg, err := plugins.NewRegistry(cfg.Plugins, log)
	if err != nil {
		return nil, err
	}

	if pluginName == "" {
		pluginName = cfg.Plugin
	}
	active, err := plugins.Active(reg, pluginName)
	if errors.Is(err, plugin.ErrPluginNotFound) {
		log.Warn().Str("plugin", pluginName).Strs("available", reg.List()).Msg("configured plugin not found, ads are disabled")
		active, err = nil, nil
	}
	if err != nil {
		reg.CloseAll()
		return nil, err
	}

	history, db, err := openHistory(cfg.History, log)
	if err != nil {
		reg.CloseAll()
		return nil, err
	}

	hm := hooks.NewManager(log)
	rt := &runtime{
		plugins: reg,
		hooks:   hm,
		history: history,
		db:      db,
		log:     log,
	}
	rt.coord = coordinator.New(active,
		coordinator.WithLogger(log),
		coordinator.WithHooks(hm),
		coordinator.WithRecorder(history),
	)
	return rt, nil
}

// Close stops the coordinator and releases the plugins and history store.
// The coordinator closes the active plugin; the registry closes the rest.
func (rt *runtime) Close() {
	if err := rt.coord.Close(); err != nil {
		rt.log.Warn().Err(err).Msg("closing active plugin")
	}
	rt.plugins.CloseAll(rt.coord.ActivePlugin())
	if rt.db != nil {
		rt.db.Close()
	}
}
