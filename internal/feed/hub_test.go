package feed

import (
	"sync"
	"testing"
	"time"

	"agencypulse/server/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewHub(t *testing.T) {
	h := NewHub(10, logrus.New())
	assert.NotNil(t, h)
	assert.False(t, h.IsClosed())
	assert.Zero(t, h.Len())
}

func TestHubPublish(t *testing.T) {
	h := NewHub(2, logrus.New())

	err := h.Publish(models.ChangeEvent{Table: "properties", Op: models.ChangeInsert})
	assert.NoError(t, err)
	assert.Equal(t, 1, h.Len())

	// Fill the buffer, then expect a full error rather than a stall.
	_ = h.Publish(models.ChangeEvent{Table: "properties"})
	err = h.Publish(models.ChangeEvent{Table: "properties"})
	assert.Equal(t, ErrHubFull, err)

	h.Close()
	err = h.Publish(models.ChangeEvent{Table: "properties"})
	assert.Equal(t, ErrHubClosed, err)
}

func TestHubSubscribersKeyedByTable(t *testing.T) {
	h := NewHub(10, logrus.New())

	var mu sync.Mutex
	var propertyEvents, activityEvents []models.ChangeEvent

	h.Subscribe("properties", func(e models.ChangeEvent) {
		mu.Lock()
		propertyEvents = append(propertyEvents, e)
		mu.Unlock()
	})
	h.Subscribe("activity_log", func(e models.ChangeEvent) {
		mu.Lock()
		activityEvents = append(activityEvents, e)
		mu.Unlock()
	})

	h.Start()
	defer h.Close()

	assert.NoError(t, h.Publish(models.ChangeEvent{Table: "properties", Op: models.ChangeUpdate, RowID: 7}))
	assert.NoError(t, h.Publish(models.ChangeEvent{Table: "properties", Op: models.ChangeDelete, RowID: 7}))
	assert.NoError(t, h.Publish(models.ChangeEvent{Table: "activity_log", Op: models.ChangeInsert}))

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, propertyEvents, 2)
	assert.Equal(t, int64(7), propertyEvents[0].RowID)
	assert.Len(t, activityEvents, 1)
}

func TestHubCloseIsIdempotent(t *testing.T) {
	h := NewHub(10, logrus.New())
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
	assert.True(t, h.IsClosed())
}
