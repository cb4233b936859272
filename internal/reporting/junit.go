package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/langgap/langbench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one model's results.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one (question, language) evaluation.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

// JUnitFailure represents an incorrect or errored evaluation.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// ConvertToJUnit converts a RunResults to JUnit XML format, one suite per
// model so CI views group by model.
func ConvertToJUnit(run *models.RunResults) *JUnitTestSuites {
	byModel := make(map[string][]models.EvalResult)
	for _, r := range run.Results {
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	out := &JUnitTestSuites{}
	for _, model := range run.Models {
		suite := JUnitTestSuite{
			Name:      model,
			Timestamp: run.Timestamp.Format(time.RFC3339),
		}
		var totalMs int64
		for _, r := range byModel[model] {
			tc := JUnitTestCase{
				Name:      fmt.Sprintf("%s[%s]", r.QuestionID, r.Language),
				Classname: model,
				Time:      float64(r.LatencyMs) / 1000.0,
			}
			if !r.Correct {
				failureType := "IncorrectAnswer"
				if r.Error != "" && r.RawResponse == "" {
					failureType = "TransportError"
					suite.Errors++
				} else {
					suite.Failures++
				}
				tc.Failure = &JUnitFailure{
					Message: r.Error,
					Type:    failureType,
				}
			}
			suite.Tests++
			totalMs += r.LatencyMs
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Time = float64(totalMs) / 1000.0

		out.Tests += suite.Tests
		out.Failures += suite.Failures
		out.Errors += suite.Errors
		out.TestSuites = append(out.TestSuites, suite)
	}
	return out
}

// WriteJUnit saves the run as JUnit XML at path.
func WriteJUnit(run *models.RunResults, path string) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(run), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling junit xml: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	return os.WriteFile(path, data, 0o644)
}
