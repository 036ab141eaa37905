package quiz

import (
	"sync"
	"time"
)

// CancelFunc stops a repeating task. It is safe to call more than once and
// from inside the task itself.
type CancelFunc func()

// Scheduler runs fn every period until the returned CancelFunc is called.
type Scheduler interface {
	Every(period time.Duration, fn func()) CancelFunc
}

// TickerScheduler backs Scheduler with a time.Ticker per task.
type TickerScheduler struct{}

func (TickerScheduler) Every(period time.Duration, fn func()) CancelFunc {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// countdownBudget is the number of seconds allotted to an attempt: half a
// minute per question, rounded up.
func countdownBudget(questionCount int) int {
	return (questionCount*60 + 1) / 2
}
