package api

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"agencypulse/server/config"
	"agencypulse/server/internal/database"
	"agencypulse/server/internal/feed"
	"agencypulse/server/internal/metrics"
	"agencypulse/server/internal/models"
	"agencypulse/server/internal/schedule"
)

// MetricsCache holds the current unfiltered aggregate. Every property change
// schedules a full recompute through the debouncer; readers always see a
// complete aggregate, never a partially built one.
type MetricsCache struct {
	store      Store
	agencyName string
	logger     *logrus.Logger

	mu      sync.RWMutex
	current models.PropertyMetrics

	debouncer *schedule.Debouncer
}

func NewMetricsCache(store Store, cfg *config.Config, logger *logrus.Logger) *MetricsCache {
	c := &MetricsCache{
		store:      store,
		agencyName: cfg.AgencyName,
		logger:     logger,
	}
	window := time.Duration(cfg.MetricsDebounceMS) * time.Millisecond
	c.debouncer = schedule.NewDebouncer(window, c.Refresh, logger)
	return c
}

// Refresh recomputes the aggregate from the full collection. A fetch failure
// keeps the previous aggregate: stale data beats no data.
func (c *MetricsCache) Refresh() {
	properties, err := c.store.GetAllProperties(database.ListOptions{})
	if err != nil {
		c.logger.WithError(err).Error("Failed to refresh metrics, keeping previous aggregate")
		return
	}

	computed := metrics.Compute(properties, metrics.LinearPredict, c.agencyName)

	c.mu.Lock()
	c.current = computed
	c.mu.Unlock()

	c.logger.WithField("properties", len(properties)).Debug("Metrics cache refreshed")
}

// Get returns the cached aggregate.
func (c *MetricsCache) Get() models.PropertyMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Invalidate schedules a recompute. Bursts of writes coalesce into one.
func (c *MetricsCache) Invalidate() {
	c.debouncer.Trigger()
}

// BindFeed subscribes the cache to property change events.
func (c *MetricsCache) BindFeed(hub *feed.Hub) {
	hub.Subscribe(database.TableProperties, func(models.ChangeEvent) {
		c.Invalidate()
	})
}

// Stop cancels any pending recompute.
func (c *MetricsCache) Stop() {
	c.debouncer.Stop()
}
