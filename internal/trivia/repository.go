// internal/trivia/repository.go
package trivia

import (
	"context"
	"log"

	"gorm.io/gorm"

	"quiz-player/internal/models"
)

// Repository is the Postgres question bank.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&models.BankQuestion{}, &models.BankOption{})
}

func (r *Repository) CountQuestions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BankQuestion{}).Count(&count).Error
	return count, err
}

// RandomQuestions picks up to amount questions in random order.
func (r *Repository) RandomQuestions(ctx context.Context, amount int) ([]models.BankQuestion, error) {
	var questions []models.BankQuestion
	err := r.db.WithContext(ctx).
		Preload("Options").
		Order("RANDOM()").
		Limit(amount).
		Find(&questions).Error
	if err != nil {
		log.Printf("Error getting bank questions: %v", err)
		return nil, err
	}
	log.Printf("Found %d bank questions", len(questions))
	return questions, nil
}

// Import stores raw questions in one transaction.
func (r *Repository) Import(ctx context.Context, raws []models.RawQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, raw := range raws {
			q := models.BankQuestion{
				Text:          raw.Text,
				CorrectAnswer: raw.CorrectAnswer,
			}
			for _, text := range raw.IncorrectAnswers {
				q.Options = append(q.Options, models.BankOption{Text: text})
			}
			if err := tx.Create(&q).Error; err != nil {
				return err
			}
		}
		log.Printf("Imported %d questions into the bank", len(raws))
		return nil
	})
}

// SeedFromCatalog imports a catalog file when the bank is still empty.
func (r *Repository) SeedFromCatalog(ctx context.Context, path string) error {
	count, err := r.CountQuestions(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Question bank already has %d questions, skipping seed", count)
		return nil
	}
	catalog, err := LoadCatalog(path)
	if err != nil {
		return err
	}
	return r.Import(ctx, catalog.Questions)
}

// BankProvider serves questions from the Postgres bank.
type BankProvider struct {
	repo *Repository
}

func NewBankProvider(repo *Repository) *BankProvider {
	return &BankProvider{repo: repo}
}

func (p *BankProvider) Fetch(ctx context.Context, amount int) ([]models.RawQuestion, error) {
	questions, err := p.repo.RandomQuestions(ctx, amount)
	if err != nil {
		return nil, err
	}
	raws := make([]models.RawQuestion, len(questions))
	for i, q := range questions {
		raws[i] = q.ToRaw()
	}
	return raws, nil
}
