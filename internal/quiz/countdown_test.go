package quiz

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickerSchedulerRunsUntilCancelled(t *testing.T) {
	var calls int32
	cancel := TickerScheduler{}.Every(5*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	})

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, time.Second, time.Millisecond)

	cancel()
	cancel()
	stopped := atomic.LoadInt32(&calls)
	time.Sleep(30 * time.Millisecond)
	// at most one tick may already be in flight when cancel returns
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), stopped+1)
}

func TestTickerSchedulerCancelFromTask(t *testing.T) {
	var calls int32
	handle := make(chan CancelFunc, 1)
	done := make(chan struct{})
	handle <- TickerScheduler{}.Every(time.Millisecond, func() {
		if atomic.AddInt32(&calls, 1) == 1 {
			(<-handle)()
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
