package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCorpus = `
- id: r1
  category: reasoning
  subcategory: math
  difficulty: easy
  prompt_en: "What is 2+2?"
  prompt_ru: "Сколько будет 2+2?"
  expected_answer: "4"
`

func TestCheckCommand_ValidCorpus(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reasoning.yaml"), []byte(testCorpus), 0o644))

	cmd := newCheckCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "1 questions valid")
}

func TestCheckCommand_SchemaViolation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"),
		[]byte("- id: x1\n  category: coding\n"), 0o644))

	cmd := newCheckCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed schema validation")
	assert.Contains(t, out.String(), "bad.yaml")
}

func TestCheckCommand_MissingDir(t *testing.T) {
	cmd := newCheckCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing")})

	require.Error(t, cmd.Execute())
}
