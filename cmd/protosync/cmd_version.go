package main

import "github.com/spf13/cobra"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the protosync version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("protosync %s\n", version)
		},
	}
}
