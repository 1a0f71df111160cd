package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/lexcodex/protosync/config"
	"github.com/lexcodex/protosync/prototype"
)

func newProbeCmd() *cobra.Command {
	var file string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe the configured symbol provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagWorkspace)
			if err != nil {
				return err
			}
			p, err := newProvider(cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			if file == "" {
				cmd.Println("Provider started successfully.")
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			symbols, err := p.DocumentSymbols(ctx, file)
			if err != nil {
				return err
			}
			if symbols == nil {
				cmd.Println("No analysis available for the file.")
				return nil
			}
			for _, s := range symbols {
				role := "definition"
				if s.Detail == prototype.DetailDeclaration {
					role = "declaration"
				}
				cmd.Printf("%s\t%s\tlines %d-%d\n", s.Name, role, s.StartLine+1, s.EndLine)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File to request symbols for")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Provider query timeout")
	return cmd
}
