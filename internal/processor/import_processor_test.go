package processor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"agencypulse/server/config"
	"agencypulse/server/internal/database"
	"agencypulse/server/internal/feed"
	"agencypulse/server/internal/models"
	"agencypulse/server/internal/queue"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BulkImport.QueueSize = 4
	cfg.BulkImport.WorkerCount = 2
	cfg.BulkImport.MaxRetries = 1
	cfg.BulkImport.RetryDelay = 0
	return cfg
}

func TestImportProcessorDrainsQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	logger := logrus.New()

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.RunMigrations())

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	cfg := testConfig()
	hub := feed.NewHub(8, logger)
	q := queue.NewImportQueue(cfg.BulkImport.QueueSize, cfg.BulkImport.WorkerCount, logger)

	proc := NewImportProcessor(gdb, q, hub, cfg, logger)
	proc.Start()
	q.Start()
	defer q.Close()
	defer proc.Stop()

	price := 500000.0
	batch := []*models.PropertyDetails{
		{Suburb: "Kenmore 4069", Category: models.CategoryListing, Price: &price},
		{Suburb: "Moggill 4070", Category: models.CategoryListing, Price: &price},
	}
	require.NoError(t, q.Push(batch))

	require.Eventually(t, func() bool {
		all, err := db.GetAllProperties(database.ListOptions{})
		return err == nil && len(all) == 2
	}, 2*time.Second, 20*time.Millisecond)

	// A successful import announces a properties change.
	assert.Equal(t, 1, hub.Len())
}

func TestImportProcessorGivesUpAfterRetries(t *testing.T) {
	logger := logrus.New()

	// No migrations: the upsert hits a missing table and fails every attempt.
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bare.db")), &gorm.Config{})
	require.NoError(t, err)

	hub := feed.NewHub(8, logger)
	q := queue.NewImportQueue(4, 1, logger)

	proc := NewImportProcessor(gdb, q, hub, testConfig(), logger)

	price := 500000.0
	err = proc.processBatch([]*models.PropertyDetails{
		{Suburb: "Kenmore 4069", Category: models.CategoryListing, Price: &price},
	})
	assert.Error(t, err)
	assert.Equal(t, 0, hub.Len())
}
