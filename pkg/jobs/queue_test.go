package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var processed []string

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		processed = append(processed, job.ID)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "mail"}))
	require.NoError(t, q.Enqueue(Job{ID: "2", Type: "mail"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "session"}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	err := q.Enqueue(Job{ID: "1"})
	require.Error(t, err)
}

func TestStopDrainsBufferedJobs(t *testing.T) {
	var mu sync.Mutex
	var processed []string

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		time.Sleep(time.Millisecond)
		mu.Lock()
		processed = append(processed, job.ID)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 8})

	q.Start(context.Background())
	for i := 0; i < 8; i++ {
		require.NoError(t, q.Enqueue(Job{ID: string(rune('a' + i)), Type: "audit"}))
	}

	// Stop waits for the workers to finish everything already buffered.
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, processed, 8)
}

func TestEnqueueDropsWhenBufferFull(t *testing.T) {
	started := make(chan struct{}, 4)
	release := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, job Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})

	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "1", Type: "session"}))
	<-started // worker holds job 1, buffer is empty

	require.NoError(t, q.Enqueue(Job{ID: "2", Type: "session"})) // fills the buffer
	err := q.Enqueue(Job{ID: "3", Type: "session"})
	require.Error(t, err)

	close(release)
	q.Stop()
}

func TestEnqueueAfterStop(t *testing.T) {
	q := NewQueue("test", func(ctx context.Context, job Job) error { return nil }, QueueConfig{Workers: 1})
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue(Job{ID: "1", Type: "mail"})
	require.Error(t, err)
}
