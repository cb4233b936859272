package main

import (
	"fmt"

	"github.com/langgap/langbench/internal/reporting"
	"github.com/langgap/langbench/internal/storage"
	"github.com/spf13/cobra"
)

var reportJUnitPath string

func newReportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <results.json[.zst]>",
		Short: "Re-render the report for a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := storage.Load(args[0])
			if err != nil {
				return err
			}

			reporting.RenderText(cmd.OutOrStdout(), run)

			if reportJUnitPath != "" {
				if err := reporting.WriteJUnit(run, reportJUnitPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nJUnit report saved to %s\n", reportJUnitPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportJUnitPath, "junit", "", "Also write a JUnit XML report to this path")

	return cmd
}
