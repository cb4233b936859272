// Package verifier judges extracted candidates: coding answers by executing a
// generated test harness in an isolated process, reasoning answers by
// normalized and numeric comparison.
package verifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/langgap/langbench/internal/models"
)

const (
	// DefaultTimeout bounds one harness execution.
	DefaultTimeout = 10 * time.Second

	// maxDiagnosticLen truncates captured stderr so a crashing candidate
	// cannot grow diagnostics without bound.
	maxDiagnosticLen = 500
)

// Verifier executes coding candidates and compares reasoning answers.
type Verifier struct {
	pythonBin string
	timeout   time.Duration
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTimeout overrides the harness execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// New creates a Verifier. The Python interpreter is resolved once at
// construction time.
func New(opts ...Option) *Verifier {
	v := &Verifier{
		pythonBin: resolvePythonBin(),
		timeout:   DefaultTimeout,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// resolvePythonBin prefers python3 but verifies it actually works. On
// Windows the Microsoft Store registers a python3.exe stub that just prints
// "Python was not found" and exits 9009.
func resolvePythonBin() string {
	if path, err := exec.LookPath("python3"); err == nil {
		cmd := exec.Command(path, "--version")
		if cmd.Run() == nil {
			return "python3"
		}
	}
	return "python"
}

// Coding runs the candidate against the question's test cases in a freshly
// spawned interpreter process under a hard wall-clock timeout. Model-generated
// code never executes in this process. The returned diagnostic is empty when
// passed is true.
func (v *Verifier) Coding(ctx context.Context, code string, q *models.CodingQuestion) (passed bool, diagnostic string) {
	harness := buildHarness(code, q.TestCases)

	tmp, err := os.CreateTemp("", "langbench-harness-*.py")
	if err != nil {
		return false, fmt.Sprintf("creating harness file: %v", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(harness); err != nil {
		tmp.Close()
		return false, fmt.Sprintf("writing harness file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Sprintf("writing harness file: %v", err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, v.pythonBin, tmp.Name())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		return false, fmt.Sprintf("execution timed out (%s)", v.timeout)
	}
	if timeoutCtx.Err() != nil {
		return false, "execution cancelled"
	}

	if runErr != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxDiagnosticLen {
			msg = msg[:maxDiagnosticLen] + "..."
		}
		return false, "runtime error: " + msg
	}

	return judgeHarnessOutput(q.ID, stdout.String())
}

// judgeHarnessOutput applies the marker-line policy: any FAIL line fails, and
// a run that produced neither PASS nor FAIL lines also fails.
func judgeHarnessOutput(questionID, stdout string) (bool, string) {
	var failures []string
	sawPass := false

	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		switch {
		case strings.HasPrefix(line, "FAIL:"):
			failures = append(failures, line)
		case strings.HasPrefix(line, "PASS:"):
			sawPass = true
		}
	}

	if len(failures) > 0 {
		return false, strings.Join(failures, "; ")
	}
	if !sawPass {
		slog.Debug("harness produced no marker lines", "question", questionID)
		trimmed := strings.TrimSpace(stdout)
		if len(trimmed) > 200 {
			trimmed = trimmed[:200]
		}
		return false, fmt.Sprintf("no test output detected; stdout: %s", trimmed)
	}
	return true, ""
}

// Reasoning compares an extracted answer against the expected one: trimmed,
// lowercased equality first, then numeric comparison under an absolute
// tolerance (nil means exact numeric match). Parse failures are a normal
// non-match, never an error.
func Reasoning(extracted, expected string, tolerance *float64) bool {
	got := strings.ToLower(strings.TrimSpace(extracted))
	want := strings.ToLower(strings.TrimSpace(expected))

	if got == want {
		return true
	}

	gotVal, err := strconv.ParseFloat(got, 64)
	if err != nil {
		return false
	}
	wantVal, err := strconv.ParseFloat(want, 64)
	if err != nil {
		return false
	}

	tol := 0.0
	if tolerance != nil {
		tol = *tolerance
	}
	return math.Abs(gotVal-wantVal) <= tol
}
