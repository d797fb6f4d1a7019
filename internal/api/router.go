package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/triplog/trips-backend-go/internal/config"
	"github.com/triplog/trips-backend-go/internal/handler"
	"github.com/triplog/trips-backend-go/internal/middleware"
)

// Handlers groups the HTTP handlers wired into the router
type Handlers struct {
	Locations *handler.LocationHandler
	Homes     *handler.HomeHandler
	Trips     *handler.TripHandler
	Detection *handler.DetectionHandler
}

// SetupRouter builds the gin engine with middleware and routes
func SetupRouter(cfg *config.Config, h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Trips Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(300, time.Minute))
	if cfg.AuthRequired {
		api.Use(middleware.Auth(cfg.JWTSecret))
	}

	locations := api.Group("/locations")
	{
		locations.GET("", h.Locations.GetSamples)
		locations.POST("", h.Locations.CreateSamples)
	}

	homes := api.Group("/homes")
	{
		homes.GET("", h.Homes.GetHomes)
		homes.PUT("", h.Homes.SetHome)
		homes.POST("/exclusions", h.Homes.AddExclusion)
		homes.DELETE("/exclusions/:id", h.Homes.DeleteExclusion)
	}

	trips := api.Group("/trips")
	{
		trips.GET("", h.Trips.GetTrips)
		trips.GET("/:id", h.Trips.GetTripByID)
		trips.PUT("/:id/status", h.Trips.UpdateTripStatus)
	}

	detection := api.Group("/detection")
	{
		detection.POST("/tasks", h.Detection.StartDetection)
		detection.GET("/tasks", h.Detection.ListTasks)
		detection.GET("/tasks/:id", h.Detection.GetTask)
		detection.POST("/tasks/:id/cancel", h.Detection.CancelTask)
	}

	return r
}
