package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/langgap/langbench/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand_WritesConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newInitCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader("0\n\n5\n10\n"))
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, config.ConfigFileName)
	assert.Contains(t, out.String(), "Wrote "+config.ConfigFileName)
}

func TestInitCommand_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("models: {}\n"), 0o644))

	cmd := newInitCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("0\n\n5\n10\n"))

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
