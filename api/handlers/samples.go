package handlers

import (
	"net/http"

	"github.com/cloudsched/scheduler/internal/events"
	"github.com/cloudsched/scheduler/internal/metrics"
	"github.com/cloudsched/scheduler/pkg/config"
	"github.com/cloudsched/scheduler/pkg/database/queries"
	"github.com/cloudsched/scheduler/pkg/models"
	"github.com/cloudsched/scheduler/pkg/validation"
	"github.com/gin-gonic/gin"
)

type SamplesHandler struct {
	samples   *queries.SampleRepository
	publisher *events.Publisher
	config    *config.APIConfig
}

func NewSamplesHandler(samples *queries.SampleRepository, publisher *events.Publisher, cfg *config.APIConfig) *SamplesHandler {
	return &SamplesHandler{
		samples:   samples,
		publisher: publisher,
		config:    cfg,
	}
}

func (h *SamplesHandler) defaultLimit() int {
	if h.config != nil && h.config.DefaultLimit > 0 {
		return h.config.DefaultLimit
	}
	return 100
}

func (h *SamplesHandler) maxLimit() int {
	if h.config != nil && h.config.MaxLimit > 0 {
		return h.config.MaxLimit
	}
	return 1000
}

type IngestRequest struct {
	Samples []models.MetricSample `json:"samples" binding:"required,min=1"`
}

// Ingest godoc
// @Summary Ingest samples
// @Description Store a batch of utilization samples for a resource
// @Tags Samples
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param request body IngestRequest true "Samples to store"
// @Success 201 {object} map[string]interface{} "Samples stored"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /resources/{id}/samples [post]
func (h *SamplesHandler) Ingest(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	records := make([]models.SampleRecord, 0, len(req.Samples))
	for _, s := range req.Samples {
		if s.Timestamp.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sample timestamp is required"})
			return
		}
		records = append(records, models.SampleRecord{
			Time:            s.Timestamp,
			ResourceID:      resourceID,
			CPUPercent:      s.CPUPercent,
			MemoryPercent:   s.MemoryPercent,
			DiskPercent:     s.DiskPercent,
			NetworkInBytes:  s.NetworkInBytes,
			NetworkOutBytes: s.NetworkOutBytes,
		})
	}

	if err := h.samples.InsertBatch(c.Request.Context(), records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store samples"})
		return
	}

	metrics.Get().IncSamplesIngested(resourceID, len(records))
	if h.publisher != nil {
		last := req.Samples[len(req.Samples)-1]
		h.publisher.SampleIngested(resourceID, &last)
	}

	c.JSON(http.StatusCreated, gin.H{
		"resource_id": resourceID,
		"ingested":    len(records),
	})
}

func (h *SamplesHandler) GetSamples(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, to := parseTimeRange(c)
	limit := parseLimit(c, h.defaultLimit(), h.maxLimit())

	samples, err := h.samples.GetRange(c.Request.Context(), resourceID, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch samples"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"from":        from,
		"to":          to,
		"data":        samples,
		"count":       len(samples),
	})
}

func (h *SamplesHandler) GetHourly(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hours := parseIntQuery(c, "hours", 168)
	if hours < 1 || hours > 24*90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be between 1 and 2160"})
		return
	}

	history, err := h.samples.GetHourly(c.Request.Context(), resourceID, hours)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch hourly samples"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"hours":       hours,
		"data":        history,
		"count":       len(history),
	})
}

func (h *SamplesHandler) GetLatest(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample, err := h.samples.GetLatest(c.Request.Context(), resourceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch latest sample"})
		return
	}

	if sample == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no samples found"})
		return
	}

	c.JSON(http.StatusOK, sample)
}

func (h *SamplesHandler) GetStats(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, to := parseTimeRange(c)

	stats, err := h.samples.GetStats(c.Request.Context(), resourceID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch sample stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *SamplesHandler) ListResources(c *gin.Context) {
	ids, err := h.samples.ListResources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  ids,
		"count": len(ids),
	})
}
