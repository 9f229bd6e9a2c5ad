// Package quiz builds shuffled question sets from lesson selections and
// scores answered attempts.
package quiz

import (
	"fmt"
	"math/rand/v2"

	"github.com/samber/lo"

	"github.com/abhisek/vocabquiz/internal/bank"
)

// Builder turns a lesson selection into a shuffled question set.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder returns a Builder drawing randomness from rng. A nil rng uses a
// randomly seeded source.
func NewBuilder(rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{rng: rng}
}

// NewSeededBuilder returns a Builder with a deterministic source.
func NewSeededBuilder(seed uint64) *Builder {
	return NewBuilder(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Build resolves lessons through the bank's lesson index, copies every
// referenced question, permutes each question's options and then permutes
// the question order. An empty selection yields an empty set.
func (b *Builder) Build(lessons []string, bk *bank.Bank) ([]bank.Question, error) {
	var ids []string
	for _, lessonID := range lessons {
		lessonIDs, err := bk.QuestionIDs(lessonID)
		if err != nil {
			return nil, fmt.Errorf("build question set: %w", err)
		}
		ids = append(ids, lessonIDs...)
	}

	questions := lo.FilterMap(ids, func(id string, _ int) (bank.Question, bool) {
		return bk.Question(id)
	})

	for i := range questions {
		b.shuffleOptions(&questions[i])
	}
	b.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	return questions, nil
}

func (b *Builder) shuffleOptions(q *bank.Question) {
	b.rng.Shuffle(len(q.Options), func(i, j int) {
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
	})
}
