package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/langgap/langbench/internal/client"
	"github.com/langgap/langbench/internal/config"
	"github.com/langgap/langbench/internal/models"
	"github.com/langgap/langbench/internal/orchestration"
	"github.com/langgap/langbench/internal/reporting"
	"github.com/langgap/langbench/internal/storage"
	"github.com/langgap/langbench/internal/verifier"
	"github.com/spf13/cobra"
)

var (
	runModels     string
	runQuestions  string
	runLimit      int
	runDryRun     bool
	runOutput     string
	runCompress   bool
	runJUnitPath  string
	runNoProgress bool
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark",
		Long: `Run the benchmark: every selected model is asked every selected question
in both English and Russian, answers are verified, and the results are
saved and reported.

Requires OPENROUTER_API_KEY to be set in the environment.`,
		Args: cobra.NoArgs,
		RunE: runCommandE,
	}

	cmd.Flags().StringVar(&runModels, "models", "all", "Comma-separated model names or 'all'")
	cmd.Flags().StringVar(&runQuestions, "questions", "all", "Comma-separated categories (coding, reasoning) or 'all'")
	cmd.Flags().IntVar(&runLimit, "limit", 0, "Max questions to evaluate (for quick test runs)")
	cmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Validate setup and print what would run, without API calls")
	cmd.Flags().StringVar(&runOutput, "output", "", "Write results to this file instead of the results directory (.zst compresses)")
	cmd.Flags().BoolVar(&runCompress, "compress", false, "Save results as zstd-compressed JSON")
	cmd.Flags().StringVar(&runJUnitPath, "junit", "", "Also write a JUnit XML report to this path")
	cmd.Flags().BoolVar(&runNoProgress, "no-progress", false, "Suppress per-task progress output")

	return cmd
}

func splitSelector(value string) []string {
	if value == "" || value == "all" {
		return nil
	}
	return strings.Split(value, ",")
}

func runCommandE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	categories, err := models.ParseCategories(splitSelector(runQuestions))
	if err != nil {
		return err
	}

	opts := orchestration.Options{
		Models:     splitSelector(runModels),
		Categories: categories,
		Limit:      runLimit,
		DryRun:     runDryRun,
	}

	var completer orchestration.Completer
	if !runDryRun {
		c, err := client.New(cfg)
		if err != nil {
			return err
		}
		defer c.Close()
		completer = c
	}

	v := verifier.New(verifier.WithTimeout(time.Duration(cfg.Verifier.EvalTimeoutSec) * time.Second))

	runner := orchestration.NewRunner(cfg, completer, v)
	out := cmd.OutOrStdout()
	if !runNoProgress {
		runner.OnProgress(func(event orchestration.ProgressEvent) {
			if event.EventType != orchestration.EventTaskComplete {
				return
			}
			mark := "✗"
			if event.Correct {
				mark = "✓"
			}
			fmt.Fprintf(out, "[%d/%d] %s %s %s/%s\n",
				event.Completed, event.Total, mark, event.Model, event.QuestionID, event.Language)
		})
	}

	run, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if run == nil {
		return nil // dry run
	}

	resultsPath := runOutput
	if resultsPath != "" {
		err = storage.SaveFile(run, resultsPath)
	} else {
		resultsPath, err = storage.NewStore(cfg.Paths.Results).Save(run, runCompress)
	}
	if err != nil {
		return fmt.Errorf("saving results: %w", err)
	}
	fmt.Fprintf(out, "\nResults saved to %s\n\n", resultsPath)

	reporting.RenderText(out, run)

	reportPath, err := reporting.WriteMarkdown(run, cfg.Paths.Reports)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nMarkdown report saved to %s\n", reportPath)

	if runJUnitPath != "" {
		if err := reporting.WriteJUnit(run, runJUnitPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "JUnit report saved to %s\n", runJUnitPath)
	}

	return nil
}
