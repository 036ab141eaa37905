package trivia

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"quiz-player/internal/models"
)

// GeneratedProvider makes up placeholder questions without correct answers.
// Useful offline and for exercising the player UI.
type GeneratedProvider struct {
	rand *rand.Rand
}

func NewGeneratedProvider() *GeneratedProvider {
	return &GeneratedProvider{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (p *GeneratedProvider) Fetch(_ context.Context, amount int) ([]models.RawQuestion, error) {
	questions := make([]models.RawQuestion, 0, amount)
	for i := 1; i <= amount; i++ {
		questions = append(questions, models.RawQuestion{
			Text:             fmt.Sprintf("Hi there %d %.6f", i, p.rand.Float64()),
			IncorrectAnswers: []string{"name", "test"},
		})
	}
	return questions, nil
}
