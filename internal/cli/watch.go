package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/amirbrooks/memo/internal/store"
)

const watchDebounce = 100 * time.Millisecond

func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "List notes and list again whenever the note file changes",
		Args:  exactArgs(0, "watch [--all]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			render := func() error {
				recs, err := a.store.List(a.view())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "-- %s %s\n", timeNow().Local().Format("15:04:05"), a.store.Path())
				a.list("Notes", recs)
				return nil
			}
			return watchFile(ctx, a.store.Path(), a.logger, watchDebounce, render)
		},
	}
	return storeCmd(cmd, storeInit)
}

// watchFile calls onChange once, then again after every burst of changes to
// path. It watches the parent directory so the rename that replaces the file
// during a rewrite is seen. It returns when ctx is done.
func watchFile(ctx context.Context, path string, logger *slog.Logger, debounce time.Duration, onChange func() error) error {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	if err := onChange(); err != nil {
		return err
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			logger.Debug("note file changed", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					return err
				}
				logger.Warn("note file is gone; waiting for it to come back", "path", path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("fsnotify error", "error", err)
		}
	}
}
