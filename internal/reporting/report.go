// Package reporting renders benchmark results as terminal tables, markdown
// reports, and JUnit XML.
package reporting

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/langgap/langbench/internal/models"
)

// modelSummary holds per-model accuracy broken down by language and category.
type modelSummary struct {
	Model    string
	ENCoding models.Score
	RUCoding models.Score
	ENReason models.Score
	RUReason models.Score
	ENAll    models.Score
	RUAll    models.Score
}

// gapEntry is one (model, question) pair that passed in English but failed in
// Russian.
type gapEntry struct {
	Model      string
	QuestionID string
}

func summarize(run *models.RunResults) []modelSummary {
	byModel := make(map[string][]models.EvalResult)
	for _, r := range run.Results {
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	summaries := make([]modelSummary, 0, len(run.Models))
	for _, model := range run.Models {
		mr := byModel[model]
		cat := func(c models.Category, lang models.Language) models.Score {
			return models.Tally(mr, func(r models.EvalResult) bool {
				return r.Category == c && r.Language == lang
			})
		}
		all := func(lang models.Language) models.Score {
			return models.Tally(mr, func(r models.EvalResult) bool {
				return r.Language == lang
			})
		}
		summaries = append(summaries, modelSummary{
			Model:    model,
			ENCoding: cat(models.CategoryCoding, models.LanguageEN),
			RUCoding: cat(models.CategoryCoding, models.LanguageRU),
			ENReason: cat(models.CategoryReasoning, models.LanguageEN),
			RUReason: cat(models.CategoryReasoning, models.LanguageRU),
			ENAll:    all(models.LanguageEN),
			RUAll:    all(models.LanguageRU),
		})
	}
	return summaries
}

// languageGaps returns the (model, question) pairs where the English run was
// correct but the Russian one was not, sorted for stable output.
func languageGaps(run *models.RunResults) []gapEntry {
	type key struct {
		questionID string
		model      string
	}
	byTask := make(map[key]map[models.Language]bool)
	for _, r := range run.Results {
		k := key{questionID: r.QuestionID, model: r.Model}
		if byTask[k] == nil {
			byTask[k] = make(map[models.Language]bool)
		}
		byTask[k][r.Language] = r.Correct
	}

	var gaps []gapEntry
	for k, langs := range byTask {
		if langs[models.LanguageEN] && !langs[models.LanguageRU] {
			gaps = append(gaps, gapEntry{Model: k.model, QuestionID: k.questionID})
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Model != gaps[j].Model {
			return gaps[i].Model < gaps[j].Model
		}
		return gaps[i].QuestionID < gaps[j].QuestionID
	})
	return gaps
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

// delta renders the RU-minus-EN accuracy difference in percentage points,
// signed.
func delta(en, ru models.Score) string {
	d := (ru.Pct() - en.Pct()) * 100
	if d > 0 {
		return fmt.Sprintf("+%.0f%%", d)
	}
	return fmt.Sprintf("%.0f%%", d)
}

// RenderText writes the comparison tables as plain text.
func RenderText(w io.Writer, run *models.RunResults) {
	summaries := summarize(run)

	table := newTable("Model", "EN (coding)", "RU (coding)", "Δ coding",
		"EN (reason)", "RU (reason)", "Δ reason", "EN (all)", "RU (all)", "Δ all")
	for _, s := range summaries {
		table.addRow(s.Model,
			pct(s.ENCoding.Pct()), pct(s.RUCoding.Pct()), delta(s.ENCoding, s.RUCoding),
			pct(s.ENReason.Pct()), pct(s.RUReason.Pct()), delta(s.ENReason, s.RUReason),
			pct(s.ENAll.Pct()), pct(s.RUAll.Pct()), delta(s.ENAll, s.RUAll))
	}

	fmt.Fprintf(w, "Results — run %s\n\n", run.RunID)
	table.render(w)

	gaps := languageGaps(run)
	if len(gaps) == 0 {
		return
	}

	fmt.Fprintf(w, "\nQuestions where EN passed but RU failed:\n\n")
	gapTable := newTable("Model", "Question", "Status")
	for _, g := range gaps {
		gapTable.addRow(g.Model, g.QuestionID, "EN ✓ / RU ✗")
	}
	gapTable.render(w)
}

// BuildMarkdown renders the full markdown report.
func BuildMarkdown(run *models.RunResults) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# LangBench Report — %s\n", run.RunID)
	fmt.Fprintf(&b, "_Generated: %s_\n\n", run.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	b.WriteString("## Overall Results\n\n")
	b.WriteString("| Model | EN (coding) | RU (coding) | Δ | EN (reason) | RU (reason) | Δ | EN (all) | RU (all) | Δ |\n")
	b.WriteString("|-------|------------|------------|---|------------|------------|---|---------|---------|---|\n")

	for _, s := range summarize(run) {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			s.Model,
			pct(s.ENCoding.Pct()), pct(s.RUCoding.Pct()), delta(s.ENCoding, s.RUCoding),
			pct(s.ENReason.Pct()), pct(s.RUReason.Pct()), delta(s.ENReason, s.RUReason),
			pct(s.ENAll.Pct()), pct(s.RUAll.Pct()), delta(s.ENAll, s.RUAll))
	}

	gaps := languageGaps(run)
	if len(gaps) > 0 {
		b.WriteString("\n## Language Gap — EN pass / RU fail\n\n")
		b.WriteString("| Model | Question | Status |\n")
		b.WriteString("|-------|----------|--------|\n")
		for _, g := range gaps {
			fmt.Fprintf(&b, "| %s | %s | EN ✓ / RU ✗ |\n", g.Model, g.QuestionID)
		}
	}

	return b.String()
}

// WriteMarkdown saves the markdown report to dir as <run_id>.md, creating the
// directory when needed.
func WriteMarkdown(run *models.RunResults, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	path := filepath.Join(dir, run.RunID+".md")
	if err := os.WriteFile(path, []byte(BuildMarkdown(run)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
