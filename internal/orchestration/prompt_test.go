package orchestration

import (
	"testing"

	"github.com/langgap/langbench/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_Coding(t *testing.T) {
	q := &models.CodingQuestion{
		QuestionCore: models.QuestionCore{
			PromptEN: "Write an add function.\n",
			PromptRU: "Напишите функцию сложения.",
		},
		FunctionName:      "add",
		FunctionSignature: "def add(a: int, b: int) -> int",
	}

	en := BuildPrompt(q, models.LanguageEN)
	assert.Contains(t, en, "Write an add function.")
	assert.Contains(t, en, "def add(a: int, b: int) -> int")
	assert.Contains(t, en, "```python")
	assert.NotContains(t, en, "ANSWER:")

	ru := BuildPrompt(q, models.LanguageRU)
	assert.Contains(t, ru, "Напишите функцию сложения.")
	assert.Contains(t, ru, "def add(a: int, b: int) -> int")
}

func TestBuildPrompt_Reasoning(t *testing.T) {
	q := &models.ReasoningQuestion{
		QuestionCore: models.QuestionCore{
			PromptEN: "What is 2+2?",
			PromptRU: "Сколько будет 2+2?",
		},
		ExpectedAnswer: "4",
	}

	en := BuildPrompt(q, models.LanguageEN)
	assert.Contains(t, en, "What is 2+2?")
	assert.Contains(t, en, "ANSWER: <your final answer>")
	assert.NotContains(t, en, "```python")

	ru := BuildPrompt(q, models.LanguageRU)
	assert.Contains(t, ru, "Сколько будет 2+2?")
	assert.Contains(t, ru, "ANSWER: <your final answer>")
}
