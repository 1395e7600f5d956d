package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agencypulse/server/internal/database"
	"agencypulse/server/internal/export"
	"agencypulse/server/internal/models"
	"agencypulse/server/internal/queue"
)

// Report artifacts are built into a buffer first so a failed render returns a
// clean error instead of a truncated download.

func (h *Handler) DownloadPropertyPDF(c *gin.Context) {
	h.downloadProperties(c, "property_report.pdf", "application/pdf", export.WritePDF)
}

func (h *Handler) DownloadPropertyCSV(c *gin.Context) {
	h.downloadProperties(c, "property_report.csv", "text/csv", export.WriteCSV)
}

func (h *Handler) DownloadPropertyXLSX(c *gin.Context) {
	h.downloadProperties(c, "property_report.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

func (h *Handler) DownloadPropertyHTML(c *gin.Context) {
	h.downloadProperties(c, "property_report.html", "text/html", export.WriteHTML)
}

type propertyWriter func(w io.Writer, properties []models.PropertyDetails, generatedAt time.Time) error

func (h *Handler) downloadProperties(c *gin.Context, filename, contentType string, write propertyWriter) {
	properties, err := h.store.GetAllProperties(database.ListOptions{})
	if err != nil {
		h.logger.WithError(err).Error("Failed to get properties for report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, properties, time.Now()); err != nil {
		h.logger.WithError(err).Error("Failed to render report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// GetCommissionReport returns the per-agency per-period commission rollup.
func (h *Handler) GetCommissionReport(c *gin.Context) {
	m := h.cache.Get()
	c.JSON(http.StatusOK, gin.H{
		"commission_by_agency":  m.CommissionByAgency,
		"agency_order":          m.AgencyOrder,
		"top_commission_earner": m.TopCommissionEarner,
	})
}

func (h *Handler) DownloadCommissionCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCommissionCSV(&buf, h.cache.Get(), time.Now()); err != nil {
		h.logger.WithError(err).Error("Failed to render commission report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="admin_commission_report.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *Handler) DownloadCommissionPDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := export.WriteCommissionPDF(&buf, h.cache.Get(), time.Now()); err != nil {
		h.logger.WithError(err).Error("Failed to render commission report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="commission_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

type ImportRequest struct {
	Properties []*models.PropertyDetails `json:"properties" binding:"required"`
}

// ImportProperties queues a bulk batch for the background upsert workers.
func (h *Handler) ImportProperties(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse import batch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import payload"})
		return
	}
	if len(req.Properties) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Import batch is empty"})
		return
	}

	if err := h.queue.Push(req.Properties); err != nil {
		if err == queue.ErrQueueFull {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Import queue is full, retry later"})
			return
		}
		h.logger.WithError(err).Error("Failed to queue import batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "queued",
		"count":  len(req.Properties),
	})
}
