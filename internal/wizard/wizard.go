// Package wizard collects project configuration interactively for the init
// command.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/langgap/langbench/internal/config"
	"golang.org/x/term"
)

// RunConfigWizard runs an interactive huh form and returns a Config built
// from the answers layered over the defaults.
func RunConfigWizard(in io.Reader, out io.Writer) (*config.Config, error) {
	cfg := config.New()

	var (
		selectedModels []string
		questionsDir   = cfg.Paths.Questions
		concurrencyRaw = strconv.Itoa(cfg.Client.MaxConcurrentPerModel)
		evalTimeoutRaw = strconv.Itoa(cfg.Verifier.EvalTimeoutSec)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Models").
				Description("Models to include in benchmark runs").
				Options(huh.NewOptions(cfg.ModelNames()...)...).
				Value(&selectedModels),
			huh.NewInput().
				Title("Questions directory").
				Description("Where question YAML files live").
				Placeholder(config.DefaultQuestionsDir).
				Value(&questionsDir),
			huh.NewInput().
				Title("Max concurrent requests per model").
				Value(&concurrencyRaw).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Code execution timeout (seconds)").
				Value(&evalTimeoutRaw).
				Validate(validatePositiveInt),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	if len(selectedModels) > 0 {
		models := make(map[string]string, len(selectedModels))
		for _, name := range selectedModels {
			models[name] = cfg.Models[name]
		}
		cfg.Models = models
	}
	if dir := strings.TrimSpace(questionsDir); dir != "" {
		cfg.Paths.Questions = dir
	}
	cfg.Client.MaxConcurrentPerModel, _ = strconv.Atoi(concurrencyRaw)
	cfg.Verifier.EvalTimeoutSec, _ = strconv.Atoi(evalTimeoutRaw)

	return cfg, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
