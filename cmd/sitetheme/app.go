package main

import (
	"fmt"

	"sitetheme/cmd/sitetheme/ui"
	"sitetheme/internal/ambient"
	"sitetheme/internal/config"
	"sitetheme/internal/kv"
	"sitetheme/internal/logging"
	"sitetheme/internal/preference"
)

// app is the wired preference engine and its collaborators for one command.
type app struct {
	cfg       *config.Config
	store     kv.Store
	ambient   *ambient.Source
	presenter *ui.Presenter
	engine    *preference.ConsentedStore
}

// newApp opens storage and builds an initialized engine. detect supplies
// the ambient signal; nil disables it.
func newApp(c *config.Config, detect ambient.DetectFunc) (*app, error) {
	store, err := kv.Open(kv.Options{
		Backend: c.Storage.Backend,
		Path:    c.Storage.Path,
		Driver:  c.Storage.Driver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", c.Storage.Backend, err)
	}

	a := &app{
		cfg:       c,
		store:     store,
		presenter: ui.NewPresenter(),
	}
	opts := []preference.Option{
		preference.WithPresenter(a.presenter),
		preference.WithPrompt(a.presenter),
	}
	if c.Ambient.Enabled && detect != nil {
		a.ambient = ambient.NewSource(detect)
		opts = append(opts, preference.WithAmbient(a.ambient))
	}
	a.engine = preference.New(store, opts...)
	return a, nil
}

// initialize resolves and applies the starting theme.
func (a *app) initialize() preference.Theme {
	timer := logging.StartTimer(logging.CategoryBoot, "initialize preferences")
	defer timer.StopWithInfo()
	return a.engine.Initialize()
}

func (a *app) Close() {
	a.engine.Close()
	if err := a.store.Close(); err != nil {
		logging.BootError("failed to close storage: %v", err)
	}
}

// watchPaths are the files whose external edits should trigger a reload,
// primary first, or nil when the backend has no file. SQLite runs in WAL
// mode, so other writers only touch the -wal and -shm siblings until a
// checkpoint.
func (a *app) watchPaths() []string {
	if !a.cfg.Watch.Enabled {
		return nil
	}
	path := a.cfg.Storage.Path
	switch a.cfg.Storage.Backend {
	case kv.BackendFile:
		return []string{path}
	case kv.BackendSQLite:
		return []string{path, path + "-wal", path + "-shm"}
	default:
		return nil
	}
}
