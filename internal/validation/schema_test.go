package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCorpus = `
- id: c1
  category: coding
  difficulty: easy
  prompt_en: "Write add."
  prompt_ru: "Напишите add."
  function_name: add
  function_signature: "def add(a, b)"
  test_cases:
    - input: "add(1, 2)"
      expected: "3"
- id: r1
  category: reasoning
  subcategory: math
  difficulty: medium
  prompt_en: "What is 2+2?"
  prompt_ru: "Сколько будет 2+2?"
  expected_answer: "4"
  tolerance: 0.5
`

func TestValidateQuestionsBytes_Valid(t *testing.T) {
	assert.Empty(t, ValidateQuestionsBytes([]byte(validCorpus)))
}

func TestValidateQuestionsBytes_MissingRequiredField(t *testing.T) {
	corpus := `
- id: c1
  category: coding
  difficulty: easy
  prompt_en: "Write add."
  prompt_ru: "Напишите add."
  function_name: add
  function_signature: "def add(a, b)"
`
	errs := ValidateQuestionsBytes([]byte(corpus))
	require.NotEmpty(t, errs)
}

func TestValidateQuestionsBytes_BadDifficulty(t *testing.T) {
	corpus := `
- id: r1
  category: reasoning
  subcategory: math
  difficulty: impossible
  prompt_en: "q"
  prompt_ru: "в"
  expected_answer: "4"
`
	errs := ValidateQuestionsBytes([]byte(corpus))
	require.NotEmpty(t, errs)
}

func TestValidateQuestionsBytes_NotAnArray(t *testing.T) {
	errs := ValidateQuestionsBytes([]byte("id: c1\ncategory: coding\n"))
	require.NotEmpty(t, errs)
}

func TestValidateQuestionsBytes_InvalidYAML(t *testing.T) {
	errs := ValidateQuestionsBytes([]byte("- id: [unclosed"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "YAML parse error")
}

func TestValidateQuestionsDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(validCorpus), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("- id: x1\n  category: coding\n"), 0o644))

	problems, err := ValidateQuestionsDir(dir)
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Contains(t, problems, "bad.yaml")
	assert.NotEmpty(t, problems["bad.yaml"])
}

func TestValidateQuestionsDir_Empty(t *testing.T) {
	_, err := ValidateQuestionsDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no question files found")
}
