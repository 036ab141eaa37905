// internal/quiz/source.go
package quiz

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"quiz-player/internal/models"
)

// Provider fetches raw questions from somewhere outside the player.
type Provider interface {
	Fetch(ctx context.Context, amount int) ([]models.RawQuestion, error)
}

// Source loads the question list of the current attempt, preferring the
// persisted copy over a fresh fetch.
type Source struct {
	provider Provider
	progress *progress
	amount   int

	mu   sync.Mutex
	rand *rand.Rand
}

type SourceOption func(*Source)

// WithRand fixes the random source used for option shuffling.
func WithRand(r *rand.Rand) SourceOption {
	return func(s *Source) {
		s.rand = r
	}
}

func NewSource(provider Provider, store Store, amount int, opts ...SourceOption) *Source {
	s := &Source{
		provider: provider,
		progress: newProgress(store),
		amount:   amount,
		rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the attempt's questions. cached reports whether they came from
// the persisted copy rather than a fresh fetch.
func (s *Source) Load(ctx context.Context) (questions []models.Question, cached bool, err error) {
	if questions, ok := s.progress.loadQuestions(ctx); ok {
		log.Printf("Using %d cached questions", len(questions))
		return questions, true, nil
	}

	raw, err := s.provider.Fetch(ctx, s.amount)
	if err != nil {
		log.Printf("Error fetching questions: %v", err)
		return nil, false, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if len(raw) == 0 {
		return nil, false, fmt.Errorf("%w: provider returned no questions", ErrSourceUnavailable)
	}

	questions = make([]models.Question, 0, len(raw))
	for i, item := range raw {
		if strings.TrimSpace(item.Text) == "" {
			return nil, false, fmt.Errorf("%w: question %d has no text", ErrSourceUnavailable, i+1)
		}
		options := s.buildOptions(item)
		if len(options) == 0 {
			return nil, false, fmt.Errorf("%w: question %d has no options", ErrSourceUnavailable, i+1)
		}
		questions = append(questions, models.Question{
			ID:            i + 1,
			Text:          item.Text,
			Options:       options,
			CorrectAnswer: item.CorrectAnswer,
		})
	}

	if err := s.progress.saveQuestions(ctx, questions); err != nil {
		log.Printf("Error caching questions: %v", err)
	}
	log.Printf("Fetched %d questions", len(questions))
	return questions, false, nil
}

func (s *Source) buildOptions(item models.RawQuestion) []string {
	options := make([]string, 0, len(item.IncorrectAnswers)+1)
	options = append(options, item.IncorrectAnswers...)
	if item.CorrectAnswer != "" {
		options = append(options, item.CorrectAnswer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	shuffle(s.rand, options)
	return options
}

// shuffle permutes options in place with Fisher-Yates.
func shuffle(r *rand.Rand, options []string) {
	for i := len(options) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
}
