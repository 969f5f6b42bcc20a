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

type exportTask struct {
	ID   string
	Kind string
}

func (t exportTask) TaskID() string   { return t.ID }
func (t exportTask) TaskKind() string { return t.Kind }

func TestQueueProcessesTasks(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	done := make(chan struct{})

	q := NewQueue("test", func(ctx context.Context, task exportTask) error {
		mu.Lock()
		seen = append(seen, task.ID)
		count := len(seen)
		mu.Unlock()
		if count == 3 {
			close(done)
		}
		return nil
	}, QueueConfig{Workers: 2})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(exportTask{ID: "a", Kind: "billing_summary"}))
	require.NoError(t, q.Enqueue(exportTask{ID: "b", Kind: "worklog_detail"}))
	require.NoError(t, q.Enqueue(exportTask{ID: "c", Kind: "workload_stats"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks were not processed in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 3)
}

func TestQueueRetriesFailedTasks(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})

	q := NewQueue("retry", func(ctx context.Context, task exportTask) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}, QueueConfig{Workers: 1, MaxRetries: 5, RetryDelay: 10 * time.Millisecond})

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(exportTask{ID: "flaky", Kind: "billing_summary"}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not retried to success in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, task exportTask) error { return nil }, QueueConfig{})
	err := q.Enqueue(exportTask{ID: "early"})
	require.Error(t, err)
}

func TestQueueStopDrainsWorkers(t *testing.T) {
	q := NewQueue("stop", func(ctx context.Context, task exportTask) error { return nil }, QueueConfig{Workers: 2})
	q.Start(context.Background())
	q.Stop()

	err := q.Enqueue(exportTask{ID: "late"})
	require.Error(t, err)
}
