package bank

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	lessons := b.Lessons()
	require.Len(t, lessons, 4)
	for i, l := range lessons {
		assert.Equal(t, i+1, l.Order)
		assert.Len(t, l.QuestionIDs, 5)
	}
	assert.Equal(t, "v1.0.0", b.Version())
	assert.Equal(t, "SAT Vocabulary", b.Title())
	assert.Len(t, b.Questions(), 20)
}

func TestDefault_EveryCorrectAnswerIsAnOption(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)
	for _, q := range b.Questions() {
		assert.Truef(t, q.HasOption(q.CorrectAnswer), "question %s", q.ID)
	}
}

func TestQuestionIDs_UnknownLesson(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	_, err = b.QuestionIDs("lesson99")
	assert.True(t, errors.Is(err, ErrUnknownLesson))
}

func TestQuestion_ReturnsCopy(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	q, ok := b.Question("q1")
	require.True(t, ok)
	q.Options[0] = "mutated"

	again, _ := b.Question("q1")
	assert.NotEqual(t, "mutated", again.Options[0])
}

func TestSelectable(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		lesson   string
		mastered []string
		want     bool
	}{
		{"first always", "lesson1", nil, true},
		{"second locked", "lesson2", nil, false},
		{"second unlocked", "lesson2", []string{"lesson1"}, true},
		{"third needs second", "lesson3", []string{"lesson1"}, false},
		{"gap not transitive", "lesson3", []string{"lesson2"}, true},
		{"unknown", "nope", []string{"lesson1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Selectable(tt.lesson, tt.mastered))
		})
	}
}

func TestPrevious(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	_, ok := b.Previous("lesson1")
	assert.False(t, ok)

	prev, ok := b.Previous("lesson3")
	require.True(t, ok)
	assert.Equal(t, "lesson2", prev.ID)
}

func TestNew_OrdersLessons(t *testing.T) {
	qs := []Question{
		{ID: "a", Options: []string{"x", "y"}, CorrectAnswer: "x"},
		{ID: "b", Options: []string{"x", "y"}, CorrectAnswer: "y"},
	}
	b, err := New("v1.0.0", []Lesson{
		{ID: "late", Order: 2, QuestionIDs: []string{"b"}},
		{ID: "early", Order: 1, QuestionIDs: []string{"a"}},
	}, qs)
	require.NoError(t, err)

	lessons := b.Lessons()
	assert.Equal(t, "early", lessons[0].ID)
	assert.Equal(t, "late", lessons[1].ID)
	assert.Equal(t, "early", lessons[0].Name)
}

func TestNew_Rejects(t *testing.T) {
	opt := []string{"x", "y"}
	tests := []struct {
		name      string
		lessons   []Lesson
		questions []Question
	}{
		{
			name:      "duplicate question",
			questions: []Question{{ID: "a", Options: opt, CorrectAnswer: "x"}, {ID: "a", Options: opt, CorrectAnswer: "x"}},
		},
		{
			name:      "answer not an option",
			questions: []Question{{ID: "a", Options: opt, CorrectAnswer: "z"}},
		},
		{
			name:      "dangling id",
			lessons:   []Lesson{{ID: "l1", Order: 1, QuestionIDs: []string{"missing"}}},
			questions: []Question{{ID: "a", Options: opt, CorrectAnswer: "x"}},
		},
		{
			name: "question in two lessons",
			lessons: []Lesson{
				{ID: "l1", Order: 1, QuestionIDs: []string{"a"}},
				{ID: "l2", Order: 2, QuestionIDs: []string{"a"}},
			},
			questions: []Question{{ID: "a", Options: opt, CorrectAnswer: "x"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("v1.0.0", tt.lessons, tt.questions)
			assert.True(t, errors.Is(err, ErrInvalidBank), "got %v", err)
		})
	}
}

func TestLoad_SchemaViolation(t *testing.T) {
	_, err := Load(strings.NewReader(`{"version":"v1.0.0","metadata":{"lessons":[]},"questions":[{"id":"q1"}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidBank))
}

func TestLoad_VersionGate(t *testing.T) {
	doc := `{"version":"%s","metadata":{"lessons":[]},"questions":[]}`

	_, err := Load(strings.NewReader(strings.Replace(doc, "%s", "v2.0.0", 1)))
	assert.True(t, errors.Is(err, ErrInvalidBank))

	_, err = Load(strings.NewReader(strings.Replace(doc, "%s", "latest", 1)))
	assert.True(t, errors.Is(err, ErrInvalidBank))

	b, err := Load(strings.NewReader(strings.Replace(doc, "%s", "v1.4.2", 1)))
	require.NoError(t, err)
	assert.Empty(t, b.Lessons())
}

func TestOpen_EmptyPathUsesDefault(t *testing.T) {
	b, err := Open("")
	require.NoError(t, err)
	def, _ := Default()
	assert.Same(t, def, b)
}
