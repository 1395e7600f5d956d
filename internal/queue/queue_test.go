package queue

import (
	"sync"
	"testing"
	"time"

	"agencypulse/server/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImportQueue(t *testing.T) {
	logger := logrus.New()
	q := NewImportQueue(10, 2, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 2, q.workers)
	assert.False(t, q.IsClosed())

	// Worker count is clamped to at least one.
	q = NewImportQueue(10, 0, logger)
	assert.Equal(t, 1, q.workers)
}

func TestImportQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewImportQueue(2, 1, logger)

	batch := []*models.PropertyDetails{{Suburb: "Kenmore"}}
	err := q.Push(batch)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Fill the queue, then expect a full error.
	for i := 0; i < 2; i++ {
		_ = q.Push([]*models.PropertyDetails{{Suburb: "Moggill"}})
	}
	err = q.Push(batch)
	assert.Equal(t, ErrQueueFull, err)

	q.Close()
	err = q.Push(batch)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestImportQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewImportQueue(10, 1, logger)

	var processed []*models.PropertyDetails
	var mu sync.Mutex

	q.Subscribe(func(batch []*models.PropertyDetails) error {
		mu.Lock()
		processed = append(processed, batch...)
		mu.Unlock()
		return nil
	})

	q.Start()
	defer q.Close()

	batch := []*models.PropertyDetails{{Suburb: "Kenmore"}, {Suburb: "Anstead"}}
	err := q.Push(batch)
	assert.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 2, len(processed))
	assert.Equal(t, "Kenmore", processed[0].Suburb)
	assert.Equal(t, "Anstead", processed[1].Suburb)
	mu.Unlock()
}

func TestImportQueue_WorkersDrainConcurrently(t *testing.T) {
	logger := logrus.New()
	q := NewImportQueue(4, 2, logger)

	started := make(chan struct{}, 2)
	release := make(chan struct{})

	q.Subscribe(func(batch []*models.PropertyDetails) error {
		started <- struct{}{}
		<-release
		return nil
	})

	q.Start()

	require.NoError(t, q.Push([]*models.PropertyDetails{{Suburb: "Kenmore"}}))
	require.NoError(t, q.Push([]*models.PropertyDetails{{Suburb: "Moggill"}}))

	// Both batches enter their handlers before either is released, which is
	// only possible with two workers draining at once.
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("expected both workers to pick up a batch")
		}
	}
	close(release)
	q.Close()
}

func TestImportQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewImportQueue(10, 1, logger)

	assert.NoError(t, q.Close())
	assert.NoError(t, q.Close())
	assert.True(t, q.IsClosed())
}

func TestImportQueue_PushDuringClose(t *testing.T) {
	logger := logrus.New()
	q := NewImportQueue(1, 1, logger)

	batch := []*models.PropertyDetails{{Suburb: "Kenmore"}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				// Must only ever see nil, full or closed, never a panic from
				// sending on a closed channel.
				err := q.Push(batch)
				if err != nil {
					assert.Contains(t, []error{ErrQueueFull, ErrQueueClosed}, err)
				}
			}
		}()
	}

	require.NoError(t, q.Close())
	wg.Wait()
	assert.Equal(t, ErrQueueClosed, q.Push(batch))
}
