package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitetheme/cmd/sitetheme/site"
	"sitetheme/cmd/sitetheme/ui"
	"sitetheme/internal/ambient"
	"sitetheme/internal/content"
	"sitetheme/internal/logging"
	"sitetheme/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// refreshDebounce coalesces presenter updates from background goroutines
// into one repaint.
const refreshDebounce = 15 * time.Millisecond

// runReader opens the interactive reader.
func runReader(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The terminal background is probed once before the program takes over
	// stdin. Polling afterwards only consults the environment.
	a, err := newApp(cfg, ambient.DetectEnv)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.ambient != nil {
		if _, ok := a.ambient.Current(); !ok {
			if t, ok := ambient.Detect(); ok {
				a.ambient.Set(t)
			}
		}
	}

	pages, err := content.LoadSite(cfg.UI.ContentDir)
	if err != nil {
		return err
	}

	theme := a.initialize()
	logging.Boot("reader starting: run=%s theme=%s consent=%s pages=%d",
		logging.RunID(), theme, a.engine.Consent(), len(pages.Pages))

	model := site.NewModel(a.engine, a.presenter, pages, site.WithWordWrap(a.cfg.UI.WordWrap))
	return runProgram(ctx, a, model, tea.WithAltScreen())
}

// runProgram runs the bubbletea program alongside the ambient poller and
// the storage watcher. Quitting the program stops the others.
func runProgram(ctx context.Context, a *app, model tea.Model, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	p := tea.NewProgram(model, append(opts, tea.WithContext(ctx))...)

	// Presenter updates made inside Update must not block on Send, so they
	// are delivered from the debouncer's goroutine.
	refresh := watch.NewDebouncer(refreshDebounce)
	defer refresh.Cancel()
	a.presenter.OnChange(func(ui.State) {
		refresh.Debounce(func() { p.Send(site.Refresh()) })
	})
	defer a.presenter.OnChange(nil)

	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		logging.UI("reader closed: theme=%s consent=%s", a.engine.Effective(), a.engine.Consent())
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	if a.ambient != nil {
		g.Go(func() error {
			return a.ambient.Poll(ctx, a.cfg.GetPollInterval())
		})
	}

	if paths := a.watchPaths(); len(paths) > 0 {
		g.Go(func() error {
			return watchStorage(ctx, paths, a.cfg.GetWatchDebounce(), func() {
				a.engine.Reload()
			})
		})
	}

	return g.Wait()
}

// watchStorage runs a watcher on paths[0] and its siblings until ctx is
// done. A watcher that cannot start is logged and skipped.
func watchStorage(ctx context.Context, paths []string, debounce time.Duration, onChange func()) error {
	path := paths[0]
	w, err := watch.New(path, debounce, onChange)
	if err != nil {
		logging.WatchWarn("storage watcher unavailable: %v", err)
		<-ctx.Done()
		return nil
	}
	for _, p := range paths[1:] {
		w.Track(p)
	}
	if err := w.Start(ctx); err != nil {
		logging.WatchWarn("failed to watch %s: %v", path, err)
		w.Stop()
		<-ctx.Done()
		return nil
	}
	<-ctx.Done()
	w.Stop()
	logging.WatchDebug("watcher stopped: %+v", w.Stats())
	return nil
}
