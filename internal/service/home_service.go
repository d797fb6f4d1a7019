package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/triplog/trips-backend-go/internal/models"
	"github.com/triplog/trips-backend-go/internal/repository"
)

// HomeService handles business logic for home references
type HomeService struct {
	repo *repository.HomeRepository
}

// NewHomeService creates a new home service
func NewHomeService(repo *repository.HomeRepository) *HomeService {
	return &HomeService{repo: repo}
}

// HomeInput is an incoming home address or exclusion zone
type HomeInput struct {
	City        string   `json:"city"`
	CountryCode string   `json:"countryCode"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// ListHomes returns every home reference, home address first
func (s *HomeService) ListHomes(ctx context.Context) ([]models.HomeReference, error) {
	return s.repo.ListAll(ctx)
}

// SetHome replaces the configured home address
func (s *HomeService) SetHome(ctx context.Context, in HomeInput) error {
	ref, err := referenceFromInput(in, models.HomeKindAddress)
	if err != nil {
		return err
	}
	return s.repo.SaveHome(ctx, ref)
}

// AddExclusion adds an exclusion zone and returns its ID
func (s *HomeService) AddExclusion(ctx context.Context, in HomeInput) (int64, error) {
	ref, err := referenceFromInput(in, models.HomeKindExclusion)
	if err != nil {
		return 0, err
	}
	return s.repo.AddExclusion(ctx, ref)
}

// RemoveExclusion deletes an exclusion zone
func (s *HomeService) RemoveExclusion(ctx context.Context, id int64) error {
	err := s.repo.DeleteExclusion(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func referenceFromInput(in HomeInput, kind string) (*models.HomeReference, error) {
	hasCoords := in.Latitude != nil && in.Longitude != nil
	if in.City == "" && !hasCoords {
		return nil, fmt.Errorf("%w: a home reference needs a city or coordinates", ErrInvalidInput)
	}

	ref := &models.HomeReference{
		Kind:        kind,
		City:        in.City,
		CountryCode: in.CountryCode,
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
	}
	if hasCoords {
		ref.Latitude = *in.Latitude
		ref.Longitude = *in.Longitude
	}
	return ref, nil
}
