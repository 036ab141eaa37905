package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quiz-player/internal/models"
	"quiz-player/pkg/cache"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	raws  []models.RawQuestion
	err   error
}

func (p *fakeProvider) Fetch(_ context.Context, amount int) ([]models.RawQuestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]models.RawQuestion, len(p.raws))
	copy(out, p.raws)
	return out, nil
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProvider) SetErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// rawQuestions builds n items where question i has correct answer "right i".
func rawQuestions(n int) []models.RawQuestion {
	raws := make([]models.RawQuestion, n)
	for i := range raws {
		num := i + 1
		raws[i] = models.RawQuestion{
			Text:             fmt.Sprintf("Question %d", num),
			CorrectAnswer:    fmt.Sprintf("right %d", num),
			IncorrectAnswers: []string{fmt.Sprintf("wrong a %d", num), fmt.Sprintf("wrong b %d", num)},
		}
	}
	return raws
}

type fakeTask struct {
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (s *fakeScheduler) Every(_ time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &fakeTask{fn: fn}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		task.cancelled = true
	}
}

// Fire runs every task that has not been cancelled.
func (s *fakeScheduler) Fire() {
	s.mu.Lock()
	var live []*fakeTask
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.mu.Unlock()
	for _, t := range live {
		t.fn()
	}
}

func (s *fakeScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (s *fakeScheduler) Task(i int) *fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[i]
}

type recorder struct {
	mu       sync.Mutex
	states   []models.Snapshot
	results  []models.Result
	failures []error
}

func (r *recorder) StateChanged(s models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) Submitted(res models.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func (r *recorder) Failed(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *recorder) Results() []models.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Result(nil), r.results...)
}

func (r *recorder) StateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

type fixture struct {
	session   *Session
	store     *cache.MemoryStore
	provider  *fakeProvider
	scheduler *fakeScheduler
	notifier  *recorder
}

func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	store := cache.NewMemoryStore()
	provider := &fakeProvider{raws: rawQuestions(n)}
	return newFixtureWith(t, store, provider)
}

func newFixtureWith(t *testing.T, store *cache.MemoryStore, provider *fakeProvider) *fixture {
	t.Helper()
	f := &fixture{
		store:     store,
		provider:  provider,
		scheduler: &fakeScheduler{},
		notifier:  &recorder{},
	}
	source := NewSource(provider, store, len(provider.raws), WithRand(rand.New(rand.NewSource(1))))
	f.session = NewSession(source, store, WithScheduler(f.scheduler), WithNotifier(f.notifier))
	return f
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	require.NoError(t, f.session.Initialize(context.Background()))
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, ok, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return value, ok
}
