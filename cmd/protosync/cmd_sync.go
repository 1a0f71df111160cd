package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lexcodex/protosync/syncer"
	"github.com/lexcodex/protosync/workspace"
)

func newSyncCmd() *cobra.Command {
	var header bool
	var noHeader bool
	var dryRun bool
	var noCache bool
	cmd := &cobra.Command{
		Use:   "sync <path>...",
		Short: "Synchronize prototypes for files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildRuntime(noCache)
			if err != nil {
				return err
			}
			defer rt.Close()
			engine := rt.engine((rt.cfg.HeaderMode || header) && !noHeader)

			var targets []string
			for _, arg := range args {
				expanded, err := syncer.Targets(arg)
				if err != nil {
					return err
				}
				targets = append(targets, expanded...)
			}

			for _, target := range targets {
				if dryRun {
					err := printDryRun(cmd, engine, target)
					if errors.Is(err, workspace.ErrUnsupportedFile) {
						continue
					}
					if err != nil {
						return err
					}
					continue
				}
				plan, err := engine.Sync(cmd.Context(), target)
				if errors.Is(err, workspace.ErrUnsupportedFile) {
					continue
				}
				if err != nil {
					return err
				}
				switch {
				case plan.Empty():
					cmd.Printf("%s: up to date\n", target)
				case plan.CreatedHeader:
					cmd.Printf("%s: synchronized (created %s)\n", target, plan.HeaderPath)
				default:
					cmd.Printf("%s: synchronized\n", target)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&header, "header", false, "Force header mode even when the config disables it")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Rewrite prototypes inside the source instead of a header")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resulting files without writing them")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the on-disk symbol cache")
	return cmd
}

func printDryRun(cmd *cobra.Command, engine *syncer.Engine, target string) error {
	plan, err := engine.Plan(cmd.Context(), target)
	if err != nil {
		return err
	}
	if plan.Empty() {
		cmd.Printf("%s: up to date\n", target)
		return nil
	}
	staged, err := plan.Stage()
	if err != nil {
		return err
	}
	for _, path := range plan.Paths() {
		cmd.Printf("--- %s ---\n%s", path, staged[path])
	}
	return nil
}
