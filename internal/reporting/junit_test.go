package reporting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToJUnit(t *testing.T) {
	suites := ConvertToJUnit(sampleRun())

	assert.Equal(t, 8, suites.Tests)
	assert.Equal(t, 4, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	require.Len(t, suites.TestSuites, 2)

	a := suites.TestSuites[0]
	assert.Equal(t, "model-a", a.Name)
	assert.Equal(t, 4, a.Tests)
	assert.Equal(t, 1, a.Failures)
	assert.Equal(t, 0, a.Errors)

	require.Len(t, a.TestCases, 4)
	assert.Equal(t, "c1[en]", a.TestCases[0].Name)
	assert.Nil(t, a.TestCases[0].Failure)
	require.NotNil(t, a.TestCases[1].Failure)
	assert.Equal(t, "IncorrectAnswer", a.TestCases[1].Failure.Type)

	b := suites.TestSuites[1]
	assert.Equal(t, "model-b", b.Name)
	assert.Equal(t, 3, b.Failures)
	assert.Equal(t, 1, b.Errors)

	// The transport failure (no raw response) is classified as an error.
	var transport *JUnitTestCase
	for i := range b.TestCases {
		if b.TestCases[i].Name == "c1[ru]" {
			transport = &b.TestCases[i]
		}
	}
	require.NotNil(t, transport)
	require.NotNil(t, transport.Failure)
	assert.Equal(t, "TransportError", transport.Failure.Type)
	assert.Equal(t, "API error: boom", transport.Failure.Message)
}

func TestWriteJUnit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, WriteJUnit(sampleRun(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "<?xml")
	assert.Contains(t, content, `<testsuite name="model-a"`)
	assert.Contains(t, content, `type="TransportError"`)
}
