package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/triplog/trips-backend-go/internal/models"
	"github.com/triplog/trips-backend-go/internal/service"
	"github.com/triplog/trips-backend-go/pkg/response"
)

// LocationHandler handles HTTP requests for location samples
type LocationHandler struct {
	service *service.LocationService
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service *service.LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// CreateSamples handles POST /api/v1/locations
func (h *LocationHandler) CreateSamples(c *gin.Context) {
	var body struct {
		Samples []service.SampleInput `json:"samples" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	count, err := h.service.IngestSamples(c.Request.Context(), body.Samples)
	if errors.Is(err, service.ErrInvalidInput) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to store samples")
		return
	}

	response.Success(c, gin.H{"inserted": count})
}

// GetSamples handles GET /api/v1/locations
func (h *LocationHandler) GetSamples(c *gin.Context) {
	var filter models.LocationSampleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	samples, total, err := h.service.GetSamples(filter)
	if err != nil {
		response.InternalError(c, "Failed to get samples")
		return
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}

	response.Success(c, models.LocationSamplesResponse{
		Data:       samples,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	})
}
