package quiz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-player/internal/models"
	"quiz-player/pkg/cache"
)

func TestProgressRoundTrip(t *testing.T) {
	store := cache.NewMemoryStore()
	p := newProgress(store)
	ctx := context.Background()

	questions := []models.Question{
		{ID: 1, Text: "one", Options: []string{"a", "b"}, CorrectAnswer: "b"},
		{ID: 2, Text: "two", Options: []string{"name", "test"}},
	}
	require.NoError(t, p.saveQuestions(ctx, questions))
	p.saveIndex(ctx, 1)
	p.saveCountdown(ctx, 42)
	p.saveAnswers(ctx, map[int]models.Answer{
		2: {QuestionID: 2, Value: models.NumberValue(1.5)},
		1: {QuestionID: 1, Value: models.TextValue("b")},
	})

	loaded, ok := p.loadQuestions(ctx)
	require.True(t, ok)
	assert.Equal(t, questions, loaded)
	assert.Equal(t, 1, p.loadIndex(ctx))
	countdown, ok := p.loadCountdown(ctx)
	assert.True(t, ok)
	assert.Equal(t, 42, countdown)

	answers := p.loadAnswers(ctx)
	require.Len(t, answers, 2)
	assert.Equal(t, models.TextValue("b"), answers[1].Value)
	assert.Equal(t, models.NumberValue(1.5), answers[2].Value)

	raw, _, err := store.Get(ctx, KeyAnswers)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"questionId":1,"value":"b"},{"questionId":2,"value":1.5}]`, raw)

	p.clear(ctx)
	assert.Equal(t, 0, store.Len())
}

func TestProgressDefaults(t *testing.T) {
	store := cache.NewMemoryStore()
	p := newProgress(store)
	ctx := context.Background()

	_, ok := p.loadQuestions(ctx)
	assert.False(t, ok)
	assert.Equal(t, 0, p.loadIndex(ctx))
	_, ok = p.loadCountdown(ctx)
	assert.False(t, ok)
	assert.Empty(t, p.loadAnswers(ctx))

	require.NoError(t, store.Set(ctx, KeyCurrentIndex, "-4"))
	assert.Equal(t, 0, p.loadIndex(ctx))
	require.NoError(t, store.Set(ctx, KeyCurrentIndex, "x"))
	assert.Equal(t, 0, p.loadIndex(ctx))
}

func TestProgressRejectsInvalidQuestionLists(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"empty list":   `[]`,
		"zero id":      `[{"id":0,"text":"q","options":["a"]}]`,
		"duplicate id": `[{"id":1,"text":"q","options":["a"]},{"id":1,"text":"r","options":["b"]}]`,
		"no options":   `[{"id":1,"text":"q","options":[]}]`,
		"not json":     `{`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			store := cache.NewMemoryStore()
			require.NoError(t, store.Set(ctx, KeyQuestions, raw))
			_, ok := newProgress(store).loadQuestions(ctx)
			assert.False(t, ok)
		})
	}
}
