// Package validation checks question corpus files against the embedded JSON
// Schema before a run touches the network.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/langgap/langbench/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// questionsSchema is the compiled JSON Schema for question corpus files.
var questionsSchema *jsonschema.Schema

func init() {
	questionsSchema = mustCompileSchema(schemas.QuestionsSchemaJSON, "questions.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// ValidateQuestionsDir validates every *.yaml file in dir. The returned map
// is keyed by file base name and only contains files with problems.
func ValidateQuestionsDir(dir string) (map[string][]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no question files found in %s", dir)
	}

	problems := make(map[string][]string)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if errs := ValidateQuestionsBytes(data); len(errs) > 0 {
			problems[filepath.Base(path)] = errs
		}
	}
	return problems, nil
}

// ValidateQuestionsBytes validates raw YAML bytes against the questions
// schema, returning one message per violation.
func ValidateQuestionsBytes(data []byte) []string {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}

	// Round-trip through encoding/json so the instance carries the value
	// types the schema library expects.
	jsonBytes, err := json.Marshal(yamlDoc)
	if err != nil {
		return []string{fmt.Sprintf("converting YAML: %v", err)}
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonBytes))
	if err != nil {
		return []string{fmt.Sprintf("converting YAML: %v", err)}
	}

	validationErr := questionsSchema.Validate(instance)
	if validationErr == nil {
		return nil
	}
	ve, ok := validationErr.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", validationErr)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, cause := range ve.Causes {
		collectSchemaErrors(cause, errs)
	}
}
