package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/langgap/langbench/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConfigWizard_Defaults(t *testing.T) {
	// Accessible-mode input: confirm the empty model selection, keep the
	// default questions dir, then accept concurrency and timeout.
	in := strings.NewReader("0\n\n5\n10\n")
	var out bytes.Buffer

	cfg, err := RunConfigWizard(in, &out)
	require.NoError(t, err)

	// No selection keeps the full registry.
	assert.Equal(t, config.New().Models, cfg.Models)
	assert.Equal(t, config.DefaultQuestionsDir, cfg.Paths.Questions)
	assert.Equal(t, 5, cfg.Client.MaxConcurrentPerModel)
	assert.Equal(t, 10, cfg.Verifier.EvalTimeoutSec)
}

func TestRunConfigWizard_CustomValues(t *testing.T) {
	// Select the first model, set a custom questions dir, tighter limits.
	in := strings.NewReader("1\n0\nmy-questions/\n2\n30\n")
	var out bytes.Buffer

	cfg, err := RunConfigWizard(in, &out)
	require.NoError(t, err)

	require.Len(t, cfg.Models, 1)
	first := config.New().ModelNames()[0]
	assert.Contains(t, cfg.Models, first)
	assert.Equal(t, "my-questions/", cfg.Paths.Questions)
	assert.Equal(t, 2, cfg.Client.MaxConcurrentPerModel)
	assert.Equal(t, 30, cfg.Verifier.EvalTimeoutSec)
}

func TestValidatePositiveInt(t *testing.T) {
	assert.NoError(t, validatePositiveInt("5"))
	assert.NoError(t, validatePositiveInt(" 12 "))
	assert.Error(t, validatePositiveInt("0"))
	assert.Error(t, validatePositiveInt("-3"))
	assert.Error(t, validatePositiveInt("abc"))
	assert.Error(t, validatePositiveInt(""))
}
