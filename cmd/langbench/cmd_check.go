package main

import (
	"fmt"
	"slices"

	"github.com/langgap/langbench/internal/config"
	"github.com/langgap/langbench/internal/models"
	"github.com/langgap/langbench/internal/validation"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [questions-dir]",
		Short: "Validate the question corpus before running a benchmark",
		Long: `Validate every question file against the embedded schema, then load the
corpus the same way 'langbench run' does to catch semantic problems the
schema cannot express (duplicate ids, missing translations).

With no argument, uses the questions directory from configuration.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".")
			if err != nil {
				return err
			}
			dir := cfg.Paths.Questions
			if len(args) > 0 {
				dir = args[0]
			}

			w := cmd.OutOrStdout()

			problems, err := validation.ValidateQuestionsDir(dir)
			if err != nil {
				return err
			}
			if len(problems) > 0 {
				names := make([]string, 0, len(problems))
				for name := range problems {
					names = append(names, name)
				}
				slices.Sort(names)
				for _, name := range names {
					fmt.Fprintf(w, "❌ %s\n", name)
					for _, msg := range problems[name] {
						fmt.Fprintf(w, "   %s\n", msg)
					}
				}
				return fmt.Errorf("%d question file(s) failed schema validation", len(problems))
			}

			questions, err := models.LoadQuestions(dir, nil)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "✅ %d questions valid in %s\n", len(questions), dir)
			return nil
		},
	}

	return cmd
}
