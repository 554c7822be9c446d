package handlers

import (
	"net/http"

	"github.com/cloudsched/scheduler/pkg/validation"
	"github.com/gin-gonic/gin"
)

// PipelineHandler controls the per-resource background pipelines.
type PipelineHandler struct {
	scheduler Scheduler
}

func NewPipelineHandler(scheduler Scheduler) *PipelineHandler {
	return &PipelineHandler{scheduler: scheduler}
}

func (h *PipelineHandler) Start(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.scheduler.StartResource(resourceID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"running":     true,
	})
}

func (h *PipelineHandler) Stop(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.scheduler.StopResource(resourceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"running":     false,
	})
}

func (h *PipelineHandler) Status(c *gin.Context) {
	resourceID := c.Param("id")
	if err := validation.ValidateResourceID(resourceID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_id": resourceID,
		"running":     h.scheduler.IsResourceRunning(resourceID),
	})
}

func (h *PipelineHandler) List(c *gin.Context) {
	running := h.scheduler.ListRunningResources()

	c.JSON(http.StatusOK, gin.H{
		"data":  running,
		"count": len(running),
	})
}
