// internal/trivia/catalog.go
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quiz-player/internal/models"
)

// Catalog is a JSON question file, in the same item shape Open Trivia DB uses.
type Catalog struct {
	Title     string               `json:"title"`
	Questions []models.RawQuestion `json:"questions"`
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, q := range catalog.Questions {
		if q.Text == "" || q.CorrectAnswer == "" {
			return nil, fmt.Errorf("catalog question %d needs text and correct_answer", i+1)
		}
	}
	return &catalog, nil
}

// FileProvider serves questions from a catalog file, read on every fetch so
// edits show up on the next attempt.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (p *FileProvider) Fetch(_ context.Context, amount int) ([]models.RawQuestion, error) {
	catalog, err := LoadCatalog(p.path)
	if err != nil {
		return nil, err
	}
	questions := catalog.Questions
	if amount > 0 && amount < len(questions) {
		questions = questions[:amount]
	}
	return questions, nil
}
