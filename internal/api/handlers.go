package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"agencypulse/server/config"
	"agencypulse/server/internal/auth"
	"agencypulse/server/internal/charts"
	"agencypulse/server/internal/database"
	"agencypulse/server/internal/filter"
	"agencypulse/server/internal/metrics"
	"agencypulse/server/internal/models"
	"agencypulse/server/internal/queue"
)

// Store is the slice of storage the handlers use.
type Store interface {
	GetAllProperties(opts database.ListOptions) ([]models.PropertyDetails, error)
	GetProperty(id int64) (*models.PropertyDetails, error)
	InsertProperty(p *models.PropertyDetails) (int64, error)
	UpdateProperty(id int64, p *models.PropertyDetails) error
	DeleteProperty(id int64) error
	GetActivityEntries(agentEmail string) ([]models.ActivityEntry, error)
	InsertActivityEntry(e *models.ActivityEntry) (int64, error)
	DeleteActivityEntry(id int64, agentEmail string) error
}

type Handler struct {
	store  Store
	auth   *auth.Service
	queue  *queue.ImportQueue
	cache  *MetricsCache
	config *config.Config
	logger *logrus.Logger
}

// ListQuery narrows the property list fetch. Repeated suburb params combine.
type ListQuery struct {
	Suburbs  []string `form:"suburb"`
	Category string   `form:"category"`
	Street   string   `form:"street"`
	MinPrice *float64 `form:"min_price"`
	MaxPrice *float64 `form:"max_price"`
}

func NewHandler(store Store, authService *auth.Service, q *queue.ImportQueue, cache *MetricsCache, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		store:  store,
		auth:   authService,
		queue:  q,
		cache:  cache,
		config: cfg,
		logger: logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetAllProperties(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.logger.WithError(err).Error("Failed to parse list query")
	}

	properties, err := h.store.GetAllProperties(database.ListOptions{
		Suburbs:    query.Suburbs,
		Category:   query.Category,
		StreetLike: query.Street,
		MinPrice:   query.MinPrice,
		MaxPrice:   query.MaxPrice,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	property, err := h.store.GetProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var property models.PropertyDetails
	if err := c.ShouldBindJSON(&property); err != nil {
		h.logger.WithError(err).Error("Failed to parse property")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property payload"})
		return
	}

	id, err := h.store.InsertProperty(&property)
	if err != nil {
		h.logger.WithError(err).Error("Failed to insert property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save property"})
		return
	}

	property.ID = id
	c.JSON(http.StatusCreated, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var property models.PropertyDetails
	if err := c.ShouldBindJSON(&property); err != nil {
		h.logger.WithError(err).Error("Failed to parse property")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property payload"})
		return
	}

	if err := h.store.UpdateProperty(id, &property); err != nil {
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	property.ID = id
	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteProperty(id); err != nil {
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetSuggestions returns the distinct per-field values for the filter pickers,
// always derived from the unfiltered collection.
func (h *Handler) GetSuggestions(c *gin.Context) {
	properties, err := h.store.GetAllProperties(database.ListOptions{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties for suggestions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get suggestions"})
		return
	}

	c.JSON(http.StatusOK, filter.Suggest(properties))
}

// GetMetrics serves the cached aggregate for an empty filter set and computes
// on demand for a constrained one.
func (h *Handler) GetMetrics(c *gin.Context) {
	var filters models.Filters
	if err := c.ShouldBindJSON(&filters); err != nil {
		h.logger.WithError(err).Debug("No filter payload, treating as unfiltered")
	}

	if filters.Empty() {
		c.JSON(http.StatusOK, h.cache.Get())
		return
	}

	properties, err := h.store.GetAllProperties(database.ListOptions{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties for metrics")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute metrics"})
		return
	}

	filtered := filter.Apply(properties, filters)
	c.JSON(http.StatusOK, metrics.Compute(filtered, metrics.LinearPredict, h.config.AgencyName))
}

// PreviewCount reports how many records a filter set would keep, without
// computing the full aggregate.
func (h *Handler) PreviewCount(c *gin.Context) {
	var filters models.Filters
	if err := c.ShouldBindJSON(&filters); err != nil {
		h.logger.WithError(err).Debug("No filter payload, treating as unfiltered")
	}

	properties, err := h.store.GetAllProperties(database.ListOptions{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties for preview count")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count matches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": filter.PreviewCount(properties, filters)})
}

func (h *Handler) GetChart(c *gin.Context) {
	m := h.cache.Get()

	var chart *charts.ChartData
	switch kind := c.Param("kind"); kind {
	case "heatmap":
		chart = charts.BuildHeatmapSeries(m)
	case "price-trend":
		chart = charts.BuildPriceTrendSeries(m)
	case "commission":
		chart = charts.BuildCommissionSeries(m)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown chart kind: " + kind})
		return
	}

	if chart == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data for chart"})
		return
	}
	c.JSON(http.StatusOK, chart)
}

// GetPrediction returns the suburb-level price projection for one property.
func (h *Handler) GetPrediction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	property, err := h.store.GetProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property for prediction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get prediction"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	suburb := config.NormalizeSuburb(property.Suburb)
	prediction, found := h.cache.Get().PredictedPriceBySuburb[suburb]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No prediction available for suburb"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suburb": suburb, "prediction": prediction})
}

// GetMarketReports returns the headline summary used by the reports screen.
func (h *Handler) GetMarketReports(c *gin.Context) {
	m := h.cache.Get()
	c.JSON(http.StatusOK, gin.H{
		"total_listings":            m.TotalListings,
		"total_sales":               m.TotalSales,
		"overall_avg_sale_price":    m.OverallAvgSalePrice,
		"top_agent_by_sales":        m.TopAgentBySales,
		"top_agency_by_sales":       m.TopAgencyBySales,
		"top_commission_earner":     m.TopCommissionEarner,
		"top_listers_by_suburb":     m.TopListersBySuburb,
		"predicted_price_by_suburb": m.PredictedPriceBySuburb,
	})
}

func (h *Handler) GetActivity(c *gin.Context) {
	scope := activityScope(c)
	entries, err := h.store.GetActivityEntries(scope)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get activity entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get activity"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *Handler) CreateActivity(c *gin.Context) {
	profile := auth.CurrentProfile(c)

	var entry models.ActivityEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		h.logger.WithError(err).Error("Failed to parse activity entry")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid activity payload"})
		return
	}
	// Entries are always attributed to the caller.
	entry.AgentEmail = profile.Email

	id, err := h.store.InsertActivityEntry(&entry)
	if err != nil {
		h.logger.WithError(err).Error("Failed to insert activity entry")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save activity"})
		return
	}

	entry.ID = id
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) DeleteActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteActivityEntry(id, activityScope(c)); err != nil {
		h.logger.WithError(err).Error("Failed to delete activity entry")
		c.JSON(http.StatusNotFound, gin.H{"error": "Activity entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// activityScope is the email the activity queries are scoped to. Admins see
// and manage everything.
func activityScope(c *gin.Context) string {
	profile := auth.CurrentProfile(c)
	if profile == nil || profile.Role == models.RoleAdmin {
		return ""
	}
	return profile.Email
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
