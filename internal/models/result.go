package models

import (
	"fmt"
	"time"
)

// CompletionResponse is the outcome of one successful inference call.
type CompletionResponse struct {
	Content    string `json:"content"`
	LatencyMs  int64  `json:"latency_ms"`
	TokensUsed int    `json:"tokens_used"`
}

// EvalResult is one (question, model, language) judgment. It is created once
// by the runner and never mutated afterwards.
type EvalResult struct {
	QuestionID  string   `json:"question_id"`
	Category    Category `json:"category"`
	Model       string   `json:"model"`
	Language    Language `json:"language"`
	RawResponse string   `json:"raw_response"`
	Extracted   string   `json:"extracted_answer,omitempty"`
	Correct     bool     `json:"correct"`
	Error       string   `json:"error,omitempty"`
	LatencyMs   int64    `json:"latency_ms"`
	TokensUsed  int      `json:"tokens_used"`
}

// RunResults is the complete output of one benchmark run. Results appear in
// completion order; consumers key on (question id, model, language).
type RunResults struct {
	RunID     string       `json:"run_id"`
	Timestamp time.Time    `json:"timestamp"`
	Models    []string     `json:"models"`
	Results   []EvalResult `json:"results"`
}

// Score is a correct/total tally used by the report tables.
type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Pct returns the accuracy in [0.0, 1.0]. Zero total scores as 0.
func (s Score) Pct() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Display renders the score as "80% (8/10)", or an em dash when empty.
func (s Score) Display() string {
	if s.Total == 0 {
		return "—"
	}
	return fmt.Sprintf("%.0f%% (%d/%d)", s.Pct()*100, s.Correct, s.Total)
}

// Tally computes a Score over the results matching predicate. A nil predicate
// matches everything.
func Tally(results []EvalResult, predicate func(EvalResult) bool) Score {
	var s Score
	for _, r := range results {
		if predicate != nil && !predicate(r) {
			continue
		}
		s.Total++
		if r.Correct {
			s.Correct++
		}
	}
	return s
}
