package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_Schedule(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	done := make(chan struct{})
	err := s.Schedule("test1", time.Now().Add(50*time.Millisecond), func() {
		close(done)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task was not executed")
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	executed := false
	var mu sync.Mutex

	err := s.Schedule("test1", time.Now().Add(100*time.Millisecond), func() {
		mu.Lock()
		executed = true
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.True(t, s.Cancel("test1"))
	assert.False(t, s.Cancel("test1"))

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.False(t, executed, "task executed despite being cancelled")
	mu.Unlock()
}

func TestScheduler_OrderingOnOneWorker(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var results []int
	var running int
	var overlapped bool
	var mu sync.Mutex
	var wg sync.WaitGroup

	task := func(n int) func() {
		return func() {
			defer wg.Done()
			mu.Lock()
			running++
			if running > 1 {
				overlapped = true
			}
			mu.Unlock()

			time.Sleep(30 * time.Millisecond)

			mu.Lock()
			running--
			results = append(results, n)
			mu.Unlock()
		}
	}

	wg.Add(3)
	start := time.Now()
	// Schedule tasks in reverse order
	require.NoError(t, s.Schedule("task3", start.Add(60*time.Millisecond), task(3)))
	require.NoError(t, s.Schedule("task1", start.Add(20*time.Millisecond), task(1)))
	require.NoError(t, s.Schedule("task2", start.Add(40*time.Millisecond), task(2)))

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, results)
	assert.False(t, overlapped, "callbacks overlapped")
}

func TestScheduler_RescheduleExisting(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	count := 0
	var mu sync.Mutex

	s.Schedule("test1", time.Now().Add(100*time.Millisecond), func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	// Same ID replaces the pending task
	s.Schedule("test1", time.Now().Add(50*time.Millisecond), func() {
		mu.Lock()
		count += 10
		mu.Unlock()
	})

	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 10, count)
	mu.Unlock()
}

func TestScheduler_PendingCount(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	s.Schedule("task1", time.Now().Add(1*time.Hour), func() {})
	s.Schedule("task2", time.Now().Add(2*time.Hour), func() {})
	s.Schedule("task3", time.Now().Add(3*time.Hour), func() {})

	assert.Equal(t, 3, s.pending())
}

func TestScheduler_StoppedRejects(t *testing.T) {
	s := NewScheduler()
	s.Start()
	s.Stop()
	s.Stop()

	err := s.Schedule("late", time.Now(), func() {})
	assert.ErrorIs(t, err, ErrStopped)
}
