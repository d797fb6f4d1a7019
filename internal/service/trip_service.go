package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/triplog/trips-backend-go/internal/models"
	"github.com/triplog/trips-backend-go/internal/repository"
)

// TripService handles business logic for trips
type TripService struct {
	repo *repository.TripRepository
}

// NewTripService creates a new trip service
func NewTripService(repo *repository.TripRepository) *TripService {
	return &TripService{repo: repo}
}

// GetTrips retrieves trips with filtering and pagination
func (s *TripService) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	return s.repo.GetTrips(filter)
}

// GetTripByID retrieves a single trip by ID
func (s *TripService) GetTripByID(id int64) (*models.Trip, error) {
	return s.repo.GetTripByID(id)
}

// UpdateStatus approves or rejects a detected trip. The detection engine
// only ever creates trips as pending; lifecycle transitions happen here, on
// user action.
func (s *TripService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if status != models.TripStatusApproved && status != models.TripStatusRejected {
		return fmt.Errorf("%w: status must be %q or %q",
			ErrInvalidInput, models.TripStatusApproved, models.TripStatusRejected)
	}

	err := s.repo.UpdateStatus(ctx, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
