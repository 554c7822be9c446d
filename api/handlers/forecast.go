package handlers

import (
	"context"
	"net/http"

	"github.com/cloudsched/scheduler/internal/engine"
	"github.com/cloudsched/scheduler/pkg/config"
	"github.com/cloudsched/scheduler/pkg/database/queries"
	"github.com/cloudsched/scheduler/pkg/models"
	"github.com/cloudsched/scheduler/pkg/validation"
	"github.com/gin-gonic/gin"
)

// Scheduler is the orchestrator surface the API depends on.
type Scheduler interface {
	RunOnce(ctx context.Context, resourceID string) (*models.Forecast, *models.Decision, error)
	StartResource(resourceID string) error
	StopResource(resourceID string) error
	IsResourceRunning(resourceID string) bool
	ListRunningResources() []string
	SubscribeAllEvents() <-chan *models.Event
}

type ForecastHandler struct {
	engine    *engine.Engine
	scheduler Scheduler
	samples   *queries.SampleRepository
	forecasts *queries.ForecastRepository
	decisions *queries.DecisionRepository
	config    *config.APIConfig
}

func NewForecastHandler(eng *engine.Engine, scheduler Scheduler, samples *queries.SampleRepository, forecasts *queries.ForecastRepository, decisions *queries.DecisionRepository, cfg *config.APIConfig) *ForecastHandler {
	return &ForecastHandler{
		engine:    eng,
		scheduler: scheduler,
		samples:   samples,
		forecasts: forecasts,
		decisions: decisions,
		config:    cfg,
	}
}

type PredictRequest struct {
	ResourceID string `json:"resource_id" binding:"required"`
	Horizon    int    `json:"prediction_horizon"`
}

// Predict godoc
// @Summary Generate forecast
// @Description Forecast resource usage on demand without recording a decision
// @Tags Forecasts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PredictRequest true "Resource and horizon"
// @Success 200 {object} models.Forecast "Generated forecast"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]string "Insufficient sample history"
// @Router /predict [post]
func (h *ForecastHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateResourceID(req.ResourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	horizon := req.Horizon
	if horizon == 0 {
		horizon = h.engine.Horizon()
	}
	if err := validation.ValidateHorizon(horizon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	history, err := h.samples.GetHourly(c.Request.Context(), req.ResourceID, validation.MaxHorizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load sample history"})
		return
	}

	forecast, err := h.engine.Forecast(req.ResourceID, history, horizon)
	if err != nil {
		if engine.IsInsufficientHistory(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "forecast failed"})
		return
	}

	c.JSON(http.StatusOK, forecast)
}

type ScheduleRequest struct {
	ResourceID string `json:"resource_id" binding:"required"`
}

type ScheduleResponse struct {
	Forecast *models.Forecast `json:"forecast"`
	Decision *models.Decision `json:"decision"`
}

// Schedule godoc
// @Summary Run scheduling cycle
// @Description Run a full forecast-and-decide cycle and persist its outcome
// @Tags Forecasts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ScheduleRequest true "Resource to schedule"
// @Success 200 {object} ScheduleResponse "Forecast and decision"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 422 {object} map[string]string "Insufficient sample history"
// @Router /schedule [post]
func (h *ForecastHandler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := validation.ValidateResourceID(req.ResourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	forecast, decision, err := h.scheduler.RunOnce(c.Request.Context(), req.ResourceID)
	if err != nil {
		if engine.IsInsufficientHistory(err) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scheduling cycle failed"})
		return
	}

	c.JSON(http.StatusOK, ScheduleResponse{
		Forecast: forecast,
		Decision: decision,
	})
}

// GetForecasts godoc
// @Summary List forecasts
// @Description Get recently generated forecasts for a resource
// @Tags Forecasts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param limit query int false "Maximum rows to return"
// @Success 200 {object} map[string]interface{} "List of forecasts"
// @Router /resources/{id}/forecasts [get]
func (h *ForecastHandler) GetForecasts(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := parseLimit(c, 20, 200)

	forecasts, err := h.forecasts.GetRecent(c.Request.Context(), resourceID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch forecasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"data":        forecasts,
		"count":       len(forecasts),
	})
}

// GetLatestForecast godoc
// @Summary Latest forecast
// @Description Get the most recently generated forecast for a resource
// @Tags Forecasts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} queries.ForecastRow "Latest forecast"
// @Failure 404 {object} map[string]string "No forecast recorded"
// @Router /resources/{id}/forecasts/latest [get]
func (h *ForecastHandler) GetLatestForecast(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	latest, err := h.forecasts.GetLatest(c.Request.Context(), resourceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch latest forecast"})
		return
	}
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no forecast recorded for resource"})
		return
	}

	c.JSON(http.StatusOK, latest)
}

// GetDecisions godoc
// @Summary List decisions
// @Description Get scheduling decisions recorded for a resource in a time range
// @Tags Decisions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Success 200 {object} map[string]interface{} "List of decisions"
// @Router /resources/{id}/decisions [get]
func (h *ForecastHandler) GetDecisions(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, to := parseTimeRange(c)
	limit := parseLimit(c, 50, 500)

	decisions, err := h.decisions.GetByResource(c.Request.Context(), resourceID, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"from":        from,
		"to":          to,
		"data":        decisions,
		"count":       len(decisions),
	})
}

func (h *ForecastHandler) GetDecisionStats(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	from, to := parseTimeRange(c)

	stats, err := h.decisions.GetStats(c.Request.Context(), resourceID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch decision stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *ForecastHandler) GetRecentDecisions(c *gin.Context) {
	limit := parseLimit(c, 20, 200)

	decisions, err := h.decisions.GetRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recent decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  decisions,
		"count": len(decisions),
	})
}
