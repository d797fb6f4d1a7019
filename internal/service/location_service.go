package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/triplog/trips-backend-go/internal/detection"
	"github.com/triplog/trips-backend-go/internal/models"
	"github.com/triplog/trips-backend-go/internal/repository"
)

// LocationService handles business logic for location samples
type LocationService struct {
	repo *repository.LocationRepository
}

// NewLocationService creates a new location service
func NewLocationService(repo *repository.LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// SampleInput is one incoming location observation. Address may carry a raw
// reverse-geocode payload; when City is empty the city-equivalent field is
// resolved from it in fixed priority order.
type SampleInput struct {
	RecordedAt  int64             `json:"recordedAt" binding:"required"` // Unix timestamp
	Latitude    *float64          `json:"latitude"`
	Longitude   *float64          `json:"longitude"`
	City        string            `json:"city"`
	CountryCode string            `json:"countryCode"`
	CountryName string            `json:"countryName"`
	Address     map[string]string `json:"address"`
}

// IngestSamples validates and stores a batch of samples
func (s *LocationService) IngestSamples(ctx context.Context, inputs []SampleInput) (int, error) {
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: empty sample batch", ErrInvalidInput)
	}

	samples := make([]models.LocationSample, 0, len(inputs))
	for i, in := range inputs {
		if in.RecordedAt <= 0 {
			return 0, fmt.Errorf("%w: sample %d has no recordedAt", ErrInvalidInput, i)
		}

		city := in.City
		if city == "" && in.Address != nil {
			city = detection.CityFromAddress(in.Address)
		}

		sample := models.LocationSample{
			RecordedAt:  time.Unix(in.RecordedAt, 0).UTC(),
			Latitude:    coordOrNaN(in.Latitude),
			Longitude:   coordOrNaN(in.Longitude),
			City:        city,
			CountryCode: in.CountryCode,
			CountryName: in.CountryName,
		}
		samples = append(samples, sample)
	}

	if err := s.repo.InsertSamples(ctx, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// GetSamples retrieves samples with filtering and pagination
func (s *LocationService) GetSamples(filter models.LocationSampleFilter) ([]models.LocationSample, int64, error) {
	return s.repo.GetSamples(filter)
}

func coordOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
