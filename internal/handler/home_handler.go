package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/triplog/trips-backend-go/internal/service"
	"github.com/triplog/trips-backend-go/pkg/response"
)

// HomeHandler handles HTTP requests for home references
type HomeHandler struct {
	service *service.HomeService
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(service *service.HomeService) *HomeHandler {
	return &HomeHandler{service: service}
}

// GetHomes handles GET /api/v1/homes
func (h *HomeHandler) GetHomes(c *gin.Context) {
	refs, err := h.service.ListHomes(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to get home references")
		return
	}
	response.Success(c, refs)
}

// SetHome handles PUT /api/v1/homes
func (h *HomeHandler) SetHome(c *gin.Context) {
	var in service.HomeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	err := h.service.SetHome(c.Request.Context(), in)
	if errors.Is(err, service.ErrInvalidInput) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to set home")
		return
	}

	response.Success(c, nil)
}

// AddExclusion handles POST /api/v1/homes/exclusions
func (h *HomeHandler) AddExclusion(c *gin.Context) {
	var in service.HomeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	id, err := h.service.AddExclusion(c.Request.Context(), in)
	if errors.Is(err, service.ErrInvalidInput) {
		response.BadRequest(c, err.Error())
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to add exclusion zone")
		return
	}

	response.Success(c, gin.H{"id": id})
}

// DeleteExclusion handles DELETE /api/v1/homes/exclusions/:id
func (h *HomeHandler) DeleteExclusion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid exclusion zone ID")
		return
	}

	err = h.service.RemoveExclusion(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		response.NotFound(c, "Exclusion zone not found")
		return
	}
	if err != nil {
		response.InternalError(c, "Failed to delete exclusion zone")
		return
	}

	response.Success(c, nil)
}
