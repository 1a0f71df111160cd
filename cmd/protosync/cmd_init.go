package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lexcodex/protosync/config"
)

func newInitCmd() *cobra.Command {
	var force bool
	var clangd bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " into the workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(flagWorkspace, config.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg := config.Default()
			if clangd {
				cfg.Server = config.ServerConfig{Command: "clangd", LanguageID: "c"}
			}
			if err := config.Save(flagWorkspace, cfg); err != nil {
				return err
			}
			cmd.Printf("Config saved to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")
	cmd.Flags().BoolVar(&clangd, "clangd", false, "Configure clangd as the symbol provider")
	return cmd
}
