package main

import (
	"log"

	"github.com/triplog/trips-backend-go/internal/api"
	"github.com/triplog/trips-backend-go/internal/config"
	"github.com/triplog/trips-backend-go/internal/database"
	"github.com/triplog/trips-backend-go/internal/handler"
	"github.com/triplog/trips-backend-go/internal/repository"
	"github.com/triplog/trips-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	locationRepo := repository.NewLocationRepository(db)
	homeRepo := repository.NewHomeRepository(db)
	tripRepo := repository.NewTripRepository(db)
	taskRepo := repository.NewDetectionTaskRepository(db)

	locationService := service.NewLocationService(locationRepo)
	homeService := service.NewHomeService(homeRepo)
	tripService := service.NewTripService(tripRepo)
	detectionService := service.NewDetectionService(taskRepo, locationRepo, homeRepo, tripRepo, cfg.Detection)

	handlers := &api.Handlers{
		Locations: handler.NewLocationHandler(locationService),
		Homes:     handler.NewHomeHandler(homeService),
		Trips:     handler.NewTripHandler(tripService),
		Detection: handler.NewDetectionHandler(detectionService),
	}

	router := api.SetupRouter(cfg, handlers)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
