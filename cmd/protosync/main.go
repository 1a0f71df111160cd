package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagWorkspace string
	flagVerbose   bool
	flagQuiet     bool
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "protosync",
		Short: "Keep C function prototypes in sync between sources and headers",
	}
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "Only log warnings and errors")

	root.AddCommand(newSyncCmd(), newWatchCmd(), newProbeCmd(), newInitCmd(), newVersionCmd())
	return root
}
