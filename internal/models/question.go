package models

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// Category identifies the question variant (coding vs. reasoning).
type Category string

const (
	CategoryCoding    Category = "coding"
	CategoryReasoning Category = "reasoning"
)

// Categories lists all valid question categories.
var Categories = []Category{CategoryCoding, CategoryReasoning}

// Language selects which prompt variant is sent to the model.
type Language string

const (
	LanguageEN Language = "en"
	LanguageRU Language = "ru"
)

// Languages lists the benchmark languages in dispatch order.
var Languages = []Language{LanguageEN, LanguageRU}

// TestCase is one check for a coding question. Input is a Python expression
// and Expected is a Python literal; both are embedded verbatim into the
// generated test harness.
type TestCase struct {
	Input    string `yaml:"input" json:"input"`
	Expected string `yaml:"expected" json:"expected"`
}

// Question is the common surface of both question variants. Callers that need
// variant-specific fields type-switch on the concrete type.
type Question interface {
	QuestionID() string
	QuestionCategory() Category
	QuestionDifficulty() string
	Prompt(lang Language) string
}

// QuestionCore holds the fields shared by both variants.
type QuestionCore struct {
	ID         string   `mapstructure:"id" json:"id"`
	Category   Category `mapstructure:"category" json:"category"`
	Difficulty string   `mapstructure:"difficulty" json:"difficulty"`
	PromptEN   string   `mapstructure:"prompt_en" json:"prompt_en"`
	PromptRU   string   `mapstructure:"prompt_ru" json:"prompt_ru"`
}

func (q *QuestionCore) QuestionID() string         { return q.ID }
func (q *QuestionCore) QuestionCategory() Category { return q.Category }
func (q *QuestionCore) QuestionDifficulty() string { return q.Difficulty }

// Prompt returns the prompt text for the requested language.
func (q *QuestionCore) Prompt(lang Language) string {
	if lang == LanguageRU {
		return q.PromptRU
	}
	return q.PromptEN
}

// CodingQuestion asks for a Python function and is checked by executing the
// extracted code against TestCases.
type CodingQuestion struct {
	QuestionCore      `mapstructure:",squash"`
	FunctionName      string     `mapstructure:"function_name" json:"function_name"`
	FunctionSignature string     `mapstructure:"function_signature" json:"function_signature"`
	TestCases         []TestCase `mapstructure:"test_cases" json:"test_cases"`
}

// ReasoningQuestion asks for a short free-text answer, checked against
// ExpectedAnswer with an optional numeric tolerance.
type ReasoningQuestion struct {
	QuestionCore   `mapstructure:",squash"`
	Subcategory    string   `mapstructure:"subcategory" json:"subcategory"`
	ExpectedAnswer string   `mapstructure:"expected_answer" json:"expected_answer"`
	Tolerance      *float64 `mapstructure:"tolerance" json:"tolerance,omitempty"`
}

// DecodeQuestion builds the right question variant from a generic YAML
// mapping, dispatching on the "category" discriminant.
func DecodeQuestion(raw map[string]any) (Question, error) {
	category, _ := raw["category"].(string)

	switch Category(category) {
	case CategoryCoding:
		var q CodingQuestion
		if err := decodeStrict(raw, &q); err != nil {
			return nil, fmt.Errorf("decoding coding question: %w", err)
		}
		return &q, nil
	case CategoryReasoning:
		var q ReasoningQuestion
		if err := decodeStrict(raw, &q); err != nil {
			return nil, fmt.Errorf("decoding reasoning question: %w", err)
		}
		return &q, nil
	default:
		return nil, fmt.Errorf("unknown question category %q", category)
	}
}

func decodeStrict(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// LoadQuestions reads every *.yaml file in dir and returns the questions whose
// category is in categories (nil or empty means all). File order is
// lexicographic and in-file order is preserved.
func LoadQuestions(dir string, categories []Category) ([]Question, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	var questions []Question
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var raw []map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		for i, item := range raw {
			q, err := DecodeQuestion(item)
			if err != nil {
				return nil, fmt.Errorf("%s entry %d: %w", filepath.Base(path), i, err)
			}
			if len(categories) > 0 && !slices.Contains(categories, q.QuestionCategory()) {
				continue
			}
			questions = append(questions, q)
		}
	}

	if err := ValidateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ValidateQuestions enforces corpus invariants: unique ids, non-empty prompts
// in both languages, and variant-specific required fields.
func ValidateQuestions(questions []Question) error {
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		id := q.QuestionID()
		if id == "" {
			return fmt.Errorf("question with empty id")
		}
		if seen[id] {
			return fmt.Errorf("duplicate question id %q", id)
		}
		seen[id] = true

		if strings.TrimSpace(q.Prompt(LanguageEN)) == "" {
			return fmt.Errorf("question %q has empty prompt_en", id)
		}
		if strings.TrimSpace(q.Prompt(LanguageRU)) == "" {
			return fmt.Errorf("question %q has empty prompt_ru", id)
		}

		switch v := q.(type) {
		case *CodingQuestion:
			if v.FunctionName == "" {
				return fmt.Errorf("coding question %q has no function_name", id)
			}
			if v.FunctionSignature == "" {
				return fmt.Errorf("coding question %q has no function_signature", id)
			}
			if len(v.TestCases) == 0 {
				return fmt.Errorf("coding question %q has no test cases", id)
			}
		case *ReasoningQuestion:
			if v.ExpectedAnswer == "" {
				return fmt.Errorf("reasoning question %q has no expected_answer", id)
			}
		}
	}
	return nil
}

// ParseCategories converts user input like "coding,reasoning" into Category
// values, rejecting unknown names.
func ParseCategories(names []string) ([]Category, error) {
	var out []Category
	for _, name := range names {
		c := Category(strings.TrimSpace(name))
		if !slices.Contains(Categories, c) {
			return nil, fmt.Errorf("unknown category %q (available: coding, reasoning)", name)
		}
		out = append(out, c)
	}
	return out, nil
}
