package orchestration

import (
	"fmt"
	"strings"

	"github.com/langgap/langbench/internal/models"
)

// BuildPrompt renders the message sent to the model for one question in one
// language. Coding prompts pin the required signature and ask for a fenced
// block; reasoning prompts ask for a trailing ANSWER tag so extraction stays
// mechanical.
func BuildPrompt(q models.Question, lang models.Language) string {
	text := strings.TrimSpace(q.Prompt(lang))

	if cq, ok := q.(*models.CodingQuestion); ok {
		return fmt.Sprintf(
			"%s\n\nWrite a Python function with the following signature:\n%s\n\n"+
				"Return ONLY the function implementation inside a ```python code block. "+
				"Do not include examples, tests, or explanations.",
			text, cq.FunctionSignature)
	}

	return fmt.Sprintf(
		"%s\n\nThink step by step. End your response with exactly:\nANSWER: <your final answer>",
		text)
}
