// Package orchestration fans a benchmark run out into one task per
// (model, language, question) triple and collects results as they complete.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/langgap/langbench/internal/config"
	"github.com/langgap/langbench/internal/extractor"
	"github.com/langgap/langbench/internal/models"
	"github.com/langgap/langbench/internal/verifier"
)

// Completer is the inference surface the runner needs; satisfied by
// client.Client and by test doubles.
type Completer interface {
	Complete(ctx context.Context, modelID, prompt string) (*models.CompletionResponse, error)
}

// EventType represents the type of progress event.
type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventTaskComplete EventType = "task_complete"
	EventRunComplete  EventType = "run_complete"
)

// ProgressEvent is one progress update delivered to listeners.
type ProgressEvent struct {
	EventType  EventType
	QuestionID string
	Model      string
	Language   models.Language
	Correct    bool
	Completed  int
	Total      int
}

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// Options filters and shapes one run.
type Options struct {
	// Models selects registry display names; empty means all.
	Models []string
	// Categories filters the corpus; empty means all.
	Categories []models.Category
	// Limit caps the number of questions after filtering; 0 means no cap.
	Limit int
	// DryRun logs the planned work without making any API calls.
	DryRun bool
}

// Runner owns task lifetimes for the duration of one benchmark run.
type Runner struct {
	cfg      *config.Config
	client   Completer
	verifier *verifier.Verifier

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// NewRunner creates a Runner.
func NewRunner(cfg *config.Config, client Completer, v *verifier.Verifier) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		verifier: v,
	}
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// task is one unit of fan-out work.
type task struct {
	modelName string
	modelID   string
	question  models.Question
	language  models.Language
}

// Run executes a full benchmark: load and filter the corpus, fan out one task
// per (model, language, question), collect in completion order, and assemble
// the immutable RunResults. A dry run returns (nil, nil) after logging the
// plan. Per-task failures never abort the run; only an empty corpus or empty
// model selection error out, before any task is scheduled.
func (r *Runner) Run(ctx context.Context, opts Options) (*models.RunResults, error) {
	questions, err := models.LoadQuestions(r.cfg.Paths.Questions, opts.Categories)
	if err != nil {
		return nil, fmt.Errorf("loading questions: %w", err)
	}
	if opts.Limit > 0 && len(questions) > opts.Limit {
		questions = questions[:opts.Limit]
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions found in %s", r.cfg.Paths.Questions)
	}

	selected, err := r.cfg.SelectModels(opts.Models)
	if err != nil {
		return nil, err
	}

	modelNames := make([]string, 0, len(selected))
	for name := range selected {
		modelNames = append(modelNames, name)
	}
	sort.Strings(modelNames)

	total := len(selected) * len(models.Languages) * len(questions)
	slog.Info("starting run",
		"questions", len(questions),
		"models", len(selected),
		"total_calls", total)

	if opts.DryRun {
		r.logPlan(modelNames, questions)
		return nil, nil
	}

	r.notifyProgress(ProgressEvent{EventType: EventRunStart, Total: total})

	tasks := make([]task, 0, total)
	for _, name := range modelNames {
		for _, lang := range models.Languages {
			for _, q := range questions {
				tasks = append(tasks, task{
					modelName: name,
					modelID:   selected[name],
					question:  q,
					language:  lang,
				})
			}
		}
	}

	resultChan := make(chan models.EvalResult, len(tasks))
	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t task) {
			defer wg.Done()
			resultChan <- r.evaluateOne(ctx, t)
		}(t)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	// Completion order, deliberately: no ordering across models, languages,
	// or questions is guaranteed to downstream consumers.
	results := make([]models.EvalResult, 0, len(tasks))
	for res := range resultChan {
		results = append(results, res)
		r.notifyProgress(ProgressEvent{
			EventType:  EventTaskComplete,
			QuestionID: res.QuestionID,
			Model:      res.Model,
			Language:   res.Language,
			Correct:    res.Correct,
			Completed:  len(results),
			Total:      total,
		})
	}

	r.notifyProgress(ProgressEvent{EventType: EventRunComplete, Completed: total, Total: total})

	return &models.RunResults{
		RunID:     newRunID(),
		Timestamp: time.Now().UTC(),
		Models:    modelNames,
		Results:   results,
	}, nil
}

func (r *Runner) logPlan(modelNames []string, questions []models.Question) {
	slog.Info("dry run, no API calls will be made")
	for _, name := range modelNames {
		slog.Info("planned model", "name", name)
	}
	for _, q := range questions {
		slog.Info("planned question",
			"id", q.QuestionID(),
			"category", q.QuestionCategory(),
			"difficulty", q.QuestionDifficulty())
	}
}

// evaluateOne sends one prompt to one model and judges the response. Every
// failure class folds into the EvalResult; nothing escapes to the caller.
func (r *Runner) evaluateOne(ctx context.Context, t task) models.EvalResult {
	result := models.EvalResult{
		QuestionID: t.question.QuestionID(),
		Category:   t.question.QuestionCategory(),
		Model:      t.modelName,
		Language:   t.language,
	}

	prompt := BuildPrompt(t.question, t.language)

	resp, err := r.client.Complete(ctx, t.modelID, prompt)
	if err != nil {
		result.Error = fmt.Sprintf("API error: %v", err)
		return result
	}

	result.RawResponse = resp.Content
	result.LatencyMs = resp.LatencyMs
	result.TokensUsed = resp.TokensUsed

	switch q := t.question.(type) {
	case *models.CodingQuestion:
		code, ok := extractor.Code(resp.Content, q.FunctionName)
		if !ok {
			result.Error = "could not extract code from response"
			return result
		}
		result.Extracted = code
		passed, diagnostic := r.verifier.Coding(ctx, code, q)
		result.Correct = passed
		result.Error = diagnostic

	case *models.ReasoningQuestion:
		answer, ok := extractor.Answer(resp.Content)
		if !ok {
			result.Error = "could not extract answer from response"
			return result
		}
		result.Extracted = answer
		result.Correct = verifier.Reasoning(answer, q.ExpectedAnswer, q.Tolerance)

	default:
		result.Error = fmt.Sprintf("unsupported question type %T", t.question)
	}

	return result
}

// newRunID returns a short unique run identifier.
func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
