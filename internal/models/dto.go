// internal/models/dto.go
package models

// QuestionDTO is a question as shown to the player; the correct answer is never sent.
type QuestionDTO struct {
	ID       int      `json:"id"`
	Text     string   `json:"text"`
	Options  []string `json:"options"`
	Answered bool     `json:"answered"`
}

func (q Question) ToDTO(answered bool) QuestionDTO {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionDTO{
		ID:       q.ID,
		Text:     q.Text,
		Options:  options,
		Answered: answered,
	}
}

// Snapshot is everything the render layer needs after a state change.
type Snapshot struct {
	Status           Status        `json:"status"`
	Questions        []QuestionDTO `json:"questions"`
	Answers          []Answer      `json:"answers"`
	CurrentIndex     int           `json:"currentIndex"`
	Current          *QuestionDTO  `json:"current,omitempty"`
	CurrentAnswer    *Answer       `json:"currentAnswer,omitempty"`
	RemainingSeconds int           `json:"remainingSeconds"`
	HasPrevious      bool          `json:"hasPrevious"`
	HasNext          bool          `json:"hasNext"`
	AnsweredCount    int           `json:"answeredCount"`
	Total            int           `json:"total"`
	Result           *Result       `json:"result,omitempty"`
}
