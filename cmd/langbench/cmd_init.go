package main

import (
	"fmt"
	"os"

	"github.com/langgap/langbench/internal/config"
	"github.com/langgap/langbench/internal/wizard"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .langbench.yaml configuration interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(config.ConfigFileName); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigFileName)
			}

			cfg, err := wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if err := cfg.Save(config.ConfigFileName); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nWrote %s\n", config.ConfigFileName)
			if cfg.APIKey == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Remember to export %s before running the benchmark.\n", config.EnvAPIKey)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
