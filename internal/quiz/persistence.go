// internal/quiz/persistence.go
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strconv"
	"strings"

	"quiz-player/internal/models"
)

// Keys of the persisted session, kept identical to the browser storage layout.
const (
	KeyQuestions    = "quizQuestions"
	KeyAnswers      = "quizQuestionsAnswers"
	KeyCurrentIndex = "currentQuestionIndex"
	KeyCountdown    = "countdownSeconds"
)

var allKeys = []string{KeyQuestions, KeyAnswers, KeyCurrentIndex, KeyCountdown}

// attemptKeys only make sense next to the question list they were recorded against.
var attemptKeys = []string{KeyAnswers, KeyCurrentIndex, KeyCountdown}

// Store is a string-valued key-value store that outlives the process.
// Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// progress reads and writes the four session keys. Reads never fail: missing or
// unparsable values come back as "not found".
type progress struct {
	store Store
}

func newProgress(store Store) *progress {
	return &progress{store: store}
}

func (p *progress) read(ctx context.Context, key string) (string, bool) {
	value, ok, err := p.store.Get(ctx, key)
	if err != nil {
		log.Printf("Error reading %s from store: %v", key, err)
		return "", false
	}
	return value, ok
}

func (p *progress) write(ctx context.Context, key, value string) {
	if err := p.store.Set(ctx, key, value); err != nil {
		log.Printf("Error writing %s to store: %v", key, err)
	}
}

func (p *progress) loadQuestions(ctx context.Context) ([]models.Question, bool) {
	raw, ok := p.read(ctx, KeyQuestions)
	if !ok {
		return nil, false
	}
	var questions []models.Question
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		log.Printf("Ignoring malformed %s: %v", KeyQuestions, err)
		return nil, false
	}
	if err := validateQuestions(questions); err != nil {
		log.Printf("Ignoring invalid %s: %v", KeyQuestions, err)
		return nil, false
	}
	return questions, true
}

func (p *progress) saveQuestions(ctx context.Context, questions []models.Question) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, KeyQuestions, string(data))
}

func (p *progress) loadIndex(ctx context.Context) int {
	index, ok := p.loadInt(ctx, KeyCurrentIndex)
	if !ok || index < 0 {
		return 0
	}
	return index
}

func (p *progress) saveIndex(ctx context.Context, index int) {
	p.write(ctx, KeyCurrentIndex, strconv.Itoa(index))
}

func (p *progress) loadCountdown(ctx context.Context) (int, bool) {
	return p.loadInt(ctx, KeyCountdown)
}

func (p *progress) saveCountdown(ctx context.Context, seconds int) {
	p.write(ctx, KeyCountdown, strconv.Itoa(seconds))
}

func (p *progress) loadInt(ctx context.Context, key string) (int, bool) {
	raw, ok := p.read(ctx, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("Ignoring malformed %s %q", key, raw)
		return 0, false
	}
	return n, true
}

// loadAnswers returns the persisted answers keyed by question id. Later entries
// for the same id win.
func (p *progress) loadAnswers(ctx context.Context) map[int]models.Answer {
	answers := make(map[int]models.Answer)
	raw, ok := p.read(ctx, KeyAnswers)
	if !ok {
		return answers
	}
	var list []models.Answer
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("Ignoring malformed %s: %v", KeyAnswers, err)
		return answers
	}
	for _, a := range list {
		answers[a.QuestionID] = a
	}
	return answers
}

func (p *progress) saveAnswers(ctx context.Context, answers map[int]models.Answer) {
	data, err := json.Marshal(sortedAnswers(answers))
	if err != nil {
		log.Printf("Error encoding answers: %v", err)
		return
	}
	p.write(ctx, KeyAnswers, string(data))
}

func (p *progress) clear(ctx context.Context) {
	if err := p.store.Delete(ctx, allKeys...); err != nil {
		log.Printf("Error clearing persisted session: %v", err)
	}
}

// clearAttempt drops the answers, index and countdown but keeps the question list.
func (p *progress) clearAttempt(ctx context.Context) {
	if err := p.store.Delete(ctx, attemptKeys...); err != nil {
		log.Printf("Error clearing stale progress: %v", err)
	}
}

func sortedAnswers(answers map[int]models.Answer) []models.Answer {
	list := make([]models.Answer, 0, len(answers))
	for _, a := range answers {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].QuestionID < list[j].QuestionID
	})
	return list
}

func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return errors.New("no questions")
	}
	seen := make(map[int]bool, len(questions))
	for _, q := range questions {
		if q.ID < 1 {
			return errors.New("question id must be positive")
		}
		if seen[q.ID] {
			return errors.New("duplicate question id")
		}
		if len(q.Options) == 0 {
			return errors.New("question without options")
		}
		seen[q.ID] = true
	}
	return nil
}
