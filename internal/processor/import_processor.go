// Package processor drains the bulk import queue into the properties table.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"agencypulse/server/config"
	"agencypulse/server/internal/database"
	"agencypulse/server/internal/feed"
	"agencypulse/server/internal/models"
	"agencypulse/server/internal/queue"
)

// ImportProcessor handles the processing of queued property import batches.
type ImportProcessor struct {
	db     *gorm.DB
	hub    *feed.Hub
	logger *logrus.Logger
	config *config.Config
	queue  *queue.ImportQueue
	ctx    context.Context
	cancel context.CancelFunc
}

// NewImportProcessor creates a new import processor instance.
func NewImportProcessor(db *gorm.DB, q *queue.ImportQueue, hub *feed.Hub, cfg *config.Config, logger *logrus.Logger) *ImportProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &ImportProcessor{
		db:     db,
		hub:    hub,
		queue:  q,
		config: cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes the processor to the import queue.
func (p *ImportProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.PropertyDetails) error {
		return p.processBatch(batch)
	})
}

// Stop cancels any retry loop in progress.
func (p *ImportProcessor) Stop() {
	p.cancel()
}

// processBatch writes a single batch with transaction and retry logic, then
// announces the change so consumers recompute.
func (p *ImportProcessor) processBatch(batch []*models.PropertyDetails) error {
	var err error
	for attempt := 0; attempt <= p.config.BulkImport.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying import batch, attempt %d of %d", attempt, p.config.BulkImport.MaxRetries)
			select {
			case <-p.ctx.Done():
				return p.ctx.Err()
			case <-time.After(time.Duration(p.config.BulkImport.RetryDelay) * time.Second):
			}
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertProperties(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert import batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully imported batch of %d properties", len(batch))
			if p.hub != nil {
				_ = p.hub.Publish(models.ChangeEvent{
					Table:      database.TableProperties,
					Op:         models.ChangeInsert,
					OccurredAt: time.Now(),
				})
			}
			return nil
		}

		p.logger.Errorf("Import batch failed: %v", err)
	}

	return fmt.Errorf("failed to import batch after %d attempts: %w", p.config.BulkImport.MaxRetries, err)
}
