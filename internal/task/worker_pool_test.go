package task

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	q := NewTaskQueue(1, discardLogger())

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 5}, discardLogger())
	assert.Equal(t, 5, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, discardLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: -5}, nil)
	assert.Equal(t, 1, pool.workerCount)

	assert.Equal(t, 2, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPoolDrainsQueueOnClose(t *testing.T) {
	q := NewTaskQueue(10, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 3}, discardLogger())

	var mu sync.Mutex
	processed := 0
	pool.Start(func(ctx context.Context, task Task, _ int) {
		assert.NoError(t, task.Execute(ctx))
		mu.Lock()
		defer mu.Unlock()
		processed++
	})

	tasks := make([]*MockTask, 10)
	for i := range tasks {
		tasks[i] = newMockTask(nil)
		require.NoError(t, q.Enqueue(tasks[i]))
	}
	q.Close()
	pool.Wait()

	assert.Equal(t, 10, processed)
	for _, task := range tasks {
		assert.Equal(t, 1, task.Runs())
	}
}

func TestWorkerPoolAbortCancelsInFlightTask(t *testing.T) {
	q := NewTaskQueue(2, discardLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, discardLogger())

	started := make(chan struct{})
	var taskErr error
	pool.Start(func(ctx context.Context, task Task, _ int) {
		taskErr = task.Execute(ctx)
	})

	require.NoError(t, q.Enqueue(newMockTask(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("task never started")
	}
	pool.Abort()
	pool.Wait()

	assert.ErrorIs(t, taskErr, context.Canceled)
}
