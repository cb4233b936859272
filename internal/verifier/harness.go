package verifier

import (
	"fmt"
	"strings"

	"github.com/langgap/langbench/internal/models"
)

// buildHarness synthesizes a self-contained Python script: the candidate code
// followed by one check block per test case. Each block evaluates the case's
// input expression and expected literal verbatim and prints a machine-parseable
// "PASS: case N" or "FAIL: case N" marker. Exceptions inside a case are caught
// locally so one broken case never aborts the script.
func buildHarness(code string, testCases []models.TestCase) string {
	var b strings.Builder

	b.WriteString(code)
	b.WriteString("\n\n# --- test harness ---\nimport math\n\n")

	for i, tc := range testCases {
		fmt.Fprintf(&b, "try:\n")
		fmt.Fprintf(&b, "    _result_%d = %s\n", i, tc.Input)
		fmt.Fprintf(&b, "    _expected_%d = %s\n", i, tc.Expected)
		fmt.Fprintf(&b, "    if _result_%d == _expected_%d:\n", i, i)
		fmt.Fprintf(&b, "        print(\"PASS: case %d\")\n", i)
		fmt.Fprintf(&b, "    else:\n")
		fmt.Fprintf(&b, "        print(f\"FAIL: case %d: got {_result_%d!r}, expected {_expected_%d!r}\")\n", i, i, i)
		fmt.Fprintf(&b, "except Exception as _e_%d:\n", i)
		fmt.Fprintf(&b, "    print(f\"FAIL: case %d: exception {_e_%d}\")\n", i, i)
		b.WriteString("\n")
	}

	return b.String()
}
