package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorePct(t *testing.T) {
	assert.Equal(t, 0.0, Score{}.Pct())
	assert.Equal(t, 0.8, Score{Correct: 8, Total: 10}.Pct())
	assert.Equal(t, 1.0, Score{Correct: 3, Total: 3}.Pct())
}

func TestScoreDisplay(t *testing.T) {
	assert.Equal(t, "—", Score{}.Display())
	assert.Equal(t, "80% (8/10)", Score{Correct: 8, Total: 10}.Display())
	assert.Equal(t, "0% (0/4)", Score{Correct: 0, Total: 4}.Display())
}

func TestTally(t *testing.T) {
	results := []EvalResult{
		{Category: CategoryCoding, Language: LanguageEN, Correct: true},
		{Category: CategoryCoding, Language: LanguageRU, Correct: false},
		{Category: CategoryReasoning, Language: LanguageEN, Correct: true},
		{Category: CategoryReasoning, Language: LanguageRU, Correct: true},
	}

	all := Tally(results, nil)
	assert.Equal(t, Score{Correct: 3, Total: 4}, all)

	coding := Tally(results, func(r EvalResult) bool { return r.Category == CategoryCoding })
	assert.Equal(t, Score{Correct: 1, Total: 2}, coding)

	ruOnly := Tally(results, func(r EvalResult) bool { return r.Language == LanguageRU })
	assert.Equal(t, Score{Correct: 1, Total: 2}, ruOnly)

	none := Tally(nil, nil)
	assert.Equal(t, Score{}, none)
}
