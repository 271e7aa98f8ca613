package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"sitetheme/cmd/sitetheme/ui"
	"sitetheme/internal/ambient"
	"sitetheme/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// watchCmd follows the effective theme without a UI
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the effective theme whenever it changes",
	Long: `Runs the preference engine headless. The terminal color scheme is
polled and the state file is watched for edits made by other processes;
every change of the effective theme is printed until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cfg, ambient.Detect)
		if err != nil {
			return err
		}
		defer a.Close()
		return watchTheme(ctx, a, cmd.OutOrStdout())
	},
}

// watchTheme prints the starting theme and every later change until ctx is
// done.
func watchTheme(ctx context.Context, a *app, out io.Writer) error {
	changes := newLatestState()
	a.presenter.OnChange(changes.put)
	defer a.presenter.OnChange(nil)

	last := a.initialize()
	fmt.Fprintf(out, "theme: %s (consent %s)\n", last, a.engine.Consent())

	g, ctx := errgroup.WithContext(ctx)
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
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case s := <-changes.C():
				if s.Theme == last {
					continue
				}
				last = s.Theme
				logging.Theme("effective theme changed to %s", s.Theme)
				fmt.Fprintf(out, "theme: %s\n", s.Theme)
			}
		}
	})
	return g.Wait()
}

// latestState is a one-slot mailbox that keeps only the newest state. A put
// replaces any value the reader has not taken yet, so a slow printer skips
// intermediate states but always ends on the last one.
type latestState struct {
	mu sync.Mutex
	ch chan ui.State
}

func newLatestState() *latestState {
	return &latestState{ch: make(chan ui.State, 1)}
}

func (l *latestState) put(s ui.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case old := <-l.ch:
		logging.WatchDebug("superseded pending theme %s with %s", old.Theme, s.Theme)
	default:
	}
	l.ch <- s
}

// C delivers the newest state not yet received.
func (l *latestState) C() <-chan ui.State { return l.ch }
