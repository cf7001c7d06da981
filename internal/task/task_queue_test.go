package task

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskQueue(t *testing.T) {
	q := NewTaskQueue(5, discardLogger())
	assert.Equal(t, 5, cap(q.tasks))
	assert.Zero(t, q.Len())

	q = NewTaskQueue(0, nil)
	assert.Equal(t, 1, cap(q.tasks))
}

func TestEnqueue(t *testing.T) {
	q := NewTaskQueue(2, discardLogger())

	require.NoError(t, q.Enqueue(newMockTask(nil)))
	require.NoError(t, q.Enqueue(newMockTask(nil)))
	assert.Equal(t, 2, q.Len())

	err := q.Enqueue(newMockTask(nil))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Contains(t, err.Error(), "capacity 2")
}

func TestClose(t *testing.T) {
	q := NewTaskQueue(2, discardLogger())
	queued := newMockTask(nil)
	require.NoError(t, q.Enqueue(queued))

	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue(newMockTask(nil)), ErrQueueClosed)

	got, ok := <-q.GetChannel()
	require.True(t, ok)
	assert.Equal(t, queued.ID(), got.ID())

	_, ok = <-q.GetChannel()
	assert.False(t, ok)
}

func TestConcurrentEnqueueAndClose(t *testing.T) {
	q := NewTaskQueue(100, discardLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Enqueue(newMockTask(nil))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		q.Close()
	}()
	wg.Wait()

	drained := 0
	for range q.GetChannel() {
		drained++
	}
	assert.LessOrEqual(t, drained, 50)
}
