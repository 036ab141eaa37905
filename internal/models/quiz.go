// internal/models/quiz.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// Question is one quiz item as played by a session. Ids are 1-based and assigned
// by the question source in load order.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"answer,omitempty"` // empty in self-generated mode
}

// HasCorrectAnswer reports whether the question can be scored.
func (q Question) HasCorrectAnswer() bool {
	return q.CorrectAnswer != ""
}

// Answer is the player's choice for one question.
type Answer struct {
	QuestionID int         `json:"questionId"`
	Value      AnswerValue `json:"value"`
}

// RawQuestion is what a question provider hands back before ids and option
// order are assigned.
type RawQuestion struct {
	Text             string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusActive    Status = "active"
	StatusSubmitted Status = "submitted"
)

type SubmitReason string

const (
	ReasonSubmitted SubmitReason = "submitted"
	ReasonTimeout   SubmitReason = "timeout"
)

// Result is the outcome of a finished attempt. Score is a percentage in [0, 100].
type Result struct {
	Score    float64      `json:"score"`
	Correct  int          `json:"correct"`
	Answered int          `json:"answered"`
	Total    int          `json:"total"`
	Reason   SubmitReason `json:"reason"`
}

// BankQuestion is a question stored in the Postgres question bank.
type BankQuestion struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Text          string         `json:"text" gorm:"not null"`
	CorrectAnswer string         `json:"correct_answer" gorm:"not null"`
	Category      string         `json:"category"`
	Options       []BankOption   `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// BankOption is one incorrect option of a BankQuestion.
type BankOption struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	QuestionID uint           `json:"question_id"`
	Text       string         `json:"text" gorm:"not null"`
}

func (BankQuestion) TableName() string {
	return "bank_questions"
}

func (BankOption) TableName() string {
	return "bank_options"
}

// ToRaw converts a bank row into provider output.
func (q BankQuestion) ToRaw() RawQuestion {
	incorrect := make([]string, len(q.Options))
	for i, opt := range q.Options {
		incorrect[i] = opt.Text
	}
	return RawQuestion{
		Text:             q.Text,
		CorrectAnswer:    q.CorrectAnswer,
		IncorrectAnswers: incorrect,
	}
}
