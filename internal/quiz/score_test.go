package quiz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vocabquiz/internal/bank"
)

func ptr(s string) *string { return &s }

func questions(n int) []bank.Question {
	qs := make([]bank.Question, n)
	for i := range qs {
		id := string(rune('a' + i))
		qs[i] = bank.Question{
			ID:            id,
			Word:          "w" + id,
			Options:       []string{"right", "wrong"},
			CorrectAnswer: "right",
		}
	}
	return qs
}

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		answers    []*string
		correct    int
		percentage int
		missed     []string
	}{
		{"all correct", 5, []*string{ptr("right"), ptr("right"), ptr("right"), ptr("right"), ptr("right")}, 5, 100, nil},
		{"one wrong", 5, []*string{ptr("right"), ptr("right"), ptr("wrong"), ptr("right"), ptr("right")}, 4, 80, []string{"c"}},
		{"rounds two thirds up", 3, []*string{ptr("right"), ptr("right"), ptr("wrong")}, 2, 67, []string{"c"}},
		{"rounds one third down", 3, []*string{ptr("right"), ptr("wrong"), ptr("wrong")}, 1, 33, []string{"b", "c"}},
		{"half rounds up", 8, []*string{ptr("right"), ptr("wrong"), ptr("wrong"), ptr("wrong"), ptr("wrong"), ptr("wrong"), ptr("wrong"), ptr("wrong")}, 1, 13, []string{"b", "c", "d", "e", "f", "g", "h"}},
		{"nil answer is missed", 2, []*string{nil, ptr("right")}, 1, 50, []string{"a"}},
		{"short answers are missed", 3, []*string{ptr("right")}, 1, 33, []string{"b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Score(questions(tt.n), tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.correct, res.CorrectCount)
			assert.Equal(t, tt.n, res.Total)
			assert.Equal(t, tt.percentage, res.Percentage)
			assert.Equal(t, tt.n-tt.correct, len(res.Missed))

			var missed []string
			for _, q := range res.Missed {
				missed = append(missed, q.ID)
			}
			assert.Equal(t, tt.missed, missed)
		})
	}
}

func TestScore_Empty(t *testing.T) {
	_, err := Score(nil, nil)
	assert.True(t, errors.Is(err, ErrEmptyQuestionSet))
}

func TestScore_CaseSensitive(t *testing.T) {
	res, err := Score(questions(1), []*string{ptr("Right")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.CorrectCount)
}

func TestResult_MissedWordsLookupByID(t *testing.T) {
	qs := questions(3)
	res, err := Score(qs, []*string{ptr("right"), ptr("wrong"), nil})
	require.NoError(t, err)

	words := res.MissedWords()
	require.Len(t, words, 2)
	assert.Equal(t, "b", words[0].QuestionID)
	assert.Equal(t, "wrong", words[0].Given)
	assert.Equal(t, "right", words[0].Correct)
	assert.Equal(t, "c", words[1].QuestionID)
	assert.Equal(t, "", words[1].Given)
	assert.False(t, res.Perfect())
}
