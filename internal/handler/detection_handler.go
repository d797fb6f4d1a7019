package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/triplog/trips-backend-go/internal/service"
	"github.com/triplog/trips-backend-go/pkg/response"
)

// DetectionHandler handles HTTP requests for detection tasks
type DetectionHandler struct {
	service *service.DetectionService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(service *service.DetectionService) *DetectionHandler {
	return &DetectionHandler{service: service}
}

// StartDetection handles POST /api/v1/detection/tasks
func (h *DetectionHandler) StartDetection(c *gin.Context) {
	var body struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	// Body is optional; an empty body means a full-history scan
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "Invalid request body")
			return
		}
	}

	task, err := h.service.StartDetection(body.StartDate, body.EndDate)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, task)
}

// GetTask handles GET /api/v1/detection/tasks/:id
func (h *DetectionHandler) GetTask(c *gin.Context) {
	task, err := h.service.GetTask(c.Param("id"))
	if err != nil {
		response.InternalError(c, "Failed to get detection task")
		return
	}
	if task == nil {
		response.NotFound(c, "Detection task not found")
		return
	}
	response.Success(c, task)
}

// ListTasks handles GET /api/v1/detection/tasks
func (h *DetectionHandler) ListTasks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	tasks, err := h.service.ListTasks(c.Query("status"), limit, offset)
	if err != nil {
		response.InternalError(c, "Failed to list detection tasks")
		return
	}
	response.Success(c, tasks)
}

// CancelTask handles POST /api/v1/detection/tasks/:id/cancel
func (h *DetectionHandler) CancelTask(c *gin.Context) {
	err := h.service.CancelTask(c.Param("id"))
	if err == service.ErrNotFound {
		response.NotFound(c, "Detection task not found")
		return
	}
	if err != nil {
		if strings.Contains(err.Error(), "terminal state") {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "Failed to cancel detection task")
		return
	}
	response.Success(c, gin.H{"cancelled": true})
}
