// internal/quiz/session.go
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"quiz-player/internal/models"
)

const tickTimeout = 5 * time.Second

// Action names a destructive operation that may need the player's confirmation.
type Action string

const (
	ActionSubmit Action = "submit"
	ActionReset  Action = "reset"
)

// ConfirmFunc decides whether a destructive action may proceed. A nil
// ConfirmFunc always proceeds.
type ConfirmFunc func(Action) bool

// Confirmed returns a ConfirmFunc with a fixed answer.
func Confirmed(ok bool) ConfirmFunc {
	return func(Action) bool { return ok }
}

// Loader supplies the questions of an attempt. cached is true when the list is
// the one persisted progress was recorded against.
type Loader interface {
	Load(ctx context.Context) (questions []models.Question, cached bool, err error)
}

// Notifier is told about every state change. It is called with the session
// lock held and must not call back into the Session.
type Notifier interface {
	StateChanged(snapshot models.Snapshot)
	Submitted(result models.Result)
	Failed(err error)
}

type noopNotifier struct{}

func (noopNotifier) StateChanged(models.Snapshot) {}
func (noopNotifier) Submitted(models.Result)      {}
func (noopNotifier) Failed(error)                 {}

// Session is one player's quiz. Every mutation is serialized; operations that
// do not apply to the current state are silently ignored and report false.
type Session struct {
	loader    Loader
	progress  *progress
	notifier  Notifier
	scheduler Scheduler
	interval  time.Duration

	mu           sync.Mutex
	status       models.Status
	questions    []models.Question
	positions    map[int]int
	answers      map[int]models.Answer
	currentIndex int
	remaining    int
	result       *models.Result
	cancelTick   CancelFunc
	generation   uint64
}

type SessionOption func(*Session)

func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithScheduler(sc Scheduler) SessionOption {
	return func(s *Session) {
		if sc != nil {
			s.scheduler = sc
		}
	}
}

// WithTickInterval changes the countdown period. One second unless overridden.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.interval = d
		}
	}
}

func NewSession(loader Loader, store Store, opts ...SessionOption) *Session {
	s := &Session{
		loader:    loader,
		progress:  newProgress(store),
		notifier:  noopNotifier{},
		scheduler: TickerScheduler{},
		interval:  time.Second,
		status:    models.StatusIdle,
		answers:   make(map[int]models.Answer),
		positions: make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier replaces the notifier. Used when the render boundary is built
// after the session.
func (s *Session) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = noopNotifier{}
	}
	s.notifier = n
}

// Initialize loads the attempt's questions, restores persisted progress and
// starts the countdown. On failure the session stays idle with nothing loaded.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.status == models.StatusLoading {
		s.mu.Unlock()
		return ErrInitializing
	}
	gen := s.beginLoadLocked()
	s.mu.Unlock()

	return s.load(ctx, gen)
}

// beginLoadLocked drops the current attempt and marks the session loading, so
// no other start or reset can slip in before load finishes.
func (s *Session) beginLoadLocked() uint64 {
	s.discardLocked()
	s.status = models.StatusLoading
	return s.generation
}

func (s *Session) load(ctx context.Context, gen uint64) error {
	index := s.progress.loadIndex(ctx)
	answers := s.progress.loadAnswers(ctx)
	questions, cached, err := s.loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil && gen != s.generation {
		err = errors.New("session closed while loading")
	}
	if err != nil {
		s.status = models.StatusIdle
		err = fmt.Errorf("%w: %w", ErrInitializationFailed, err)
		log.Printf("Quiz initialization failed: %v", err)
		s.notifier.Failed(err)
		s.notifier.StateChanged(s.snapshotLocked())
		return err
	}

	if !cached {
		// progress left over from a question list that is gone
		if index != 0 || len(answers) > 0 {
			log.Printf("Discarding progress recorded against another question set")
		}
		index = 0
		answers = make(map[int]models.Answer)
		s.progress.clearAttempt(ctx)
	}

	positions := make(map[int]int, len(questions))
	for i, q := range questions {
		positions[q.ID] = i
	}
	for id := range answers {
		if _, ok := positions[id]; !ok {
			delete(answers, id)
		}
	}
	if index >= len(questions) {
		index = 0
	}

	remaining, ok := s.progress.loadCountdown(ctx)
	if !ok {
		remaining = countdownBudget(len(questions))
	} else if remaining < 0 {
		remaining = 0
	}
	s.progress.saveCountdown(ctx, remaining)

	s.questions = questions
	s.positions = positions
	s.answers = answers
	s.currentIndex = index
	s.remaining = remaining
	s.status = models.StatusActive
	s.cancelTick = s.scheduler.Every(s.interval, func() { s.onTick(gen) })

	log.Printf("Quiz started: %d questions, index %d, %d answers, %ds left",
		len(questions), index, len(answers), remaining)
	s.notifier.StateChanged(s.snapshotLocked())
	return nil
}

func (s *Session) NavigateTo(ctx context.Context, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked(ctx, index)
}

// NavigateRelative moves by delta positions. Moves past either end are ignored,
// never wrapped.
func (s *Session) NavigateRelative(ctx context.Context, delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked(ctx, s.currentIndex+delta)
}

func (s *Session) JumpToQuestionByID(ctx context.Context, questionID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[questionID]
	if !ok {
		return false
	}
	return s.navigateLocked(ctx, pos)
}

func (s *Session) navigateLocked(ctx context.Context, index int) bool {
	if s.status != models.StatusActive || index < 0 || index >= len(s.questions) {
		return false
	}
	s.currentIndex = index
	s.progress.saveIndex(ctx, index)
	s.notifier.StateChanged(s.snapshotLocked())
	return true
}

// SetAnswer records or overwrites the answer for a question.
func (s *Session) SetAnswer(ctx context.Context, questionID int, value models.AnswerValue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.StatusActive {
		return false
	}
	if _, ok := s.positions[questionID]; !ok {
		return false
	}
	s.answers[questionID] = models.Answer{QuestionID: questionID, Value: value}
	s.progress.saveAnswers(ctx, s.answers)
	s.notifier.StateChanged(s.snapshotLocked())
	return true
}

// TickCountdown advances the countdown by one second. Dropping below zero
// submits the attempt.
func (s *Session) TickCountdown(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.StatusActive {
		return
	}
	s.tickLocked(ctx)
}

func (s *Session) onTick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.status != models.StatusActive {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()
	s.tickLocked(ctx)
}

func (s *Session) tickLocked(ctx context.Context) {
	s.remaining--
	s.progress.saveCountdown(ctx, s.remaining)
	if s.remaining < 0 {
		log.Printf("Countdown expired, submitting quiz")
		s.submitLocked(ctx, models.ReasonTimeout)
		return
	}
	s.notifier.StateChanged(s.snapshotLocked())
}

// Submit scores the attempt and clears all persisted progress. It reports false
// when the player declined or the session is not active.
func (s *Session) Submit(ctx context.Context, confirm ConfirmFunc) (models.Result, bool) {
	if confirm != nil && !confirm(ActionSubmit) {
		return models.Result{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.StatusActive {
		return models.Result{}, false
	}
	return s.submitLocked(ctx, models.ReasonSubmitted), true
}

func (s *Session) submitLocked(ctx context.Context, reason models.SubmitReason) models.Result {
	result := score(s.questions, s.answers, reason)
	s.status = models.StatusSubmitted
	s.stopCountdownLocked()
	s.result = &result
	s.progress.clear(ctx)

	log.Printf("Quiz submitted (%s): %d/%d correct, score %.1f",
		reason, result.Correct, result.Total, result.Score)
	s.notifier.Submitted(result)
	s.notifier.StateChanged(s.snapshotLocked())
	return result
}

// Reset abandons the current attempt and starts a new one with freshly fetched
// questions. It reports false when the player declined.
func (s *Session) Reset(ctx context.Context, confirm ConfirmFunc) (bool, error) {
	if confirm != nil && !confirm(ActionReset) {
		return false, nil
	}
	s.mu.Lock()
	if s.status == models.StatusLoading {
		s.mu.Unlock()
		return false, ErrInitializing
	}
	gen := s.beginLoadLocked()
	s.progress.clear(ctx)
	s.mu.Unlock()

	log.Printf("Quiz reset")
	return true, s.load(ctx, gen)
}

// Close stops the countdown without touching persisted progress, so the
// attempt resumes on the next start.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCountdownLocked()
	s.generation++
}

func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// discardLocked drops the in-memory attempt and invalidates pending ticks.
func (s *Session) discardLocked() {
	s.stopCountdownLocked()
	s.generation++
	s.status = models.StatusIdle
	s.questions = nil
	s.positions = make(map[int]int)
	s.answers = make(map[int]models.Answer)
	s.currentIndex = 0
	s.remaining = 0
	s.result = nil
}

func (s *Session) stopCountdownLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
}

func (s *Session) snapshotLocked() models.Snapshot {
	active := s.status == models.StatusActive
	snap := models.Snapshot{
		Status:           s.status,
		Questions:        make([]models.QuestionDTO, 0, len(s.questions)),
		Answers:          make([]models.Answer, 0, len(s.answers)),
		CurrentIndex:     s.currentIndex,
		RemainingSeconds: max(s.remaining, 0),
		HasPrevious:      active && s.currentIndex > 0,
		HasNext:          active && s.currentIndex < len(s.questions)-1,
		AnsweredCount:    len(s.answers),
		Total:            len(s.questions),
	}
	for i, q := range s.questions {
		answer, answered := s.answers[q.ID]
		dto := q.ToDTO(answered)
		snap.Questions = append(snap.Questions, dto)
		if answered {
			snap.Answers = append(snap.Answers, answer)
		}
		if i == s.currentIndex {
			snap.Current = &dto
			if answered {
				snap.CurrentAnswer = &answer
			}
		}
	}
	if s.result != nil {
		result := *s.result
		snap.Result = &result
	}
	return snap
}

func score(questions []models.Question, answers map[int]models.Answer, reason models.SubmitReason) models.Result {
	result := models.Result{
		Total:    len(questions),
		Answered: len(answers),
		Reason:   reason,
	}
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if ok && q.HasCorrectAnswer() && answer.Value.Matches(q.CorrectAnswer) {
			result.Correct++
		}
	}
	if result.Total > 0 {
		result.Score = float64(result.Correct) / float64(result.Total) * 100
	}
	return result
}
