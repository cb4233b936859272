// Package schemas embeds the JSON Schemas used to validate corpus files.
package schemas

import _ "embed"

// QuestionsSchemaJSON is the schema for question corpus YAML files.
//
//go:embed questions.schema.json
var QuestionsSchemaJSON string
