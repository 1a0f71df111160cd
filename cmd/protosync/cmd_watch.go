package main

import (
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/protosync/tui"
	"github.com/lexcodex/protosync/watch"
)

func newWatchCmd() *cobra.Command {
	var noTUI bool
	var noCache bool
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Watch a directory and synchronize sources as they change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := flagWorkspace
			if len(args) == 1 {
				root = args[0]
			}
			rt, err := buildRuntime(noCache)
			if err != nil {
				return err
			}
			defer rt.Close()
			engine := rt.engine(rt.cfg.HeaderMode)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			debounce := time.Duration(rt.cfg.Watch.DebounceMS) * time.Millisecond
			watcher, err := watch.New(root, []string{".c"}, debounce, rt.log)
			if err != nil {
				return err
			}
			watcher.Start(ctx)
			defer watcher.Close()

			events := make(chan tui.Event)
			go func() {
				defer close(events)
				for batch := range watcher.Events() {
					for _, path := range batch {
						rt.registry.Invalidate(path)
						plan, err := engine.Sync(ctx, path)
						ev := tui.Event{Time: time.Now(), Source: path, Err: err}
						if err == nil && !plan.Empty() {
							ev.Touched = plan.Paths()
							ev.Created = plan.CreatedHeader
						}
						select {
						case events <- ev:
						case <-ctx.Done():
							return
						}
					}
				}
			}()

			if noTUI {
				logEvents(rt, events)
				return nil
			}
			return tui.Run(ctx, root, events)
		},
	}
	cmd.Flags().BoolVar(&noTUI, "no-tui", false, "Log plain lines instead of the dashboard")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the on-disk symbol cache")
	return cmd
}

func logEvents(rt *runtime, events <-chan tui.Event) {
	for ev := range events {
		switch {
		case ev.Err != nil:
			rt.log.Error("sync failed", "source", ev.Source, "error", ev.Err)
		case len(ev.Touched) == 0:
			rt.log.Info("up to date", "source", ev.Source)
		default:
			rt.log.Info("synchronized", "source", ev.Source, "updated", strings.Join(ev.Touched, ","))
		}
	}
}
