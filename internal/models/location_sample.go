package models

import (
	"time"

	"github.com/triplog/trips-backend-go/internal/spatial"
)

// LocationSample represents one immutable, timestamped location observation
// with reverse-geocoded address metadata when available.
type LocationSample struct {
	ID         int64     `json:"id" db:"id"`
	RecordedAt time.Time `json:"recordedAt" db:"recorded_at"`

	// Coordinates; NaN marks an absent value (nullable columns in the store)
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`

	// Resolved address fields; empty when geocoding had nothing
	City        string `json:"city,omitempty" db:"city"`
	CountryCode string `json:"countryCode,omitempty" db:"country_code"`
	CountryName string `json:"countryName,omitempty" db:"country_name"`

	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
}

// HasCoordinates reports whether the sample carries a usable coordinate pair
func (s *LocationSample) HasCoordinates() bool {
	return spatial.ValidCoordinates(s.Latitude, s.Longitude)
}

// LocationSamplesResponse represents a paginated response of location samples
type LocationSamplesResponse struct {
	Data       []LocationSample `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalPages int              `json:"totalPages"`
}

// LocationSampleFilter represents filter parameters for querying samples
type LocationSampleFilter struct {
	StartTime   int64  `form:"startTime"` // Unix timestamp
	EndTime     int64  `form:"endTime"`   // Unix timestamp
	City        string `form:"city"`
	CountryCode string `form:"countryCode"`
	Page        int    `form:"page"`
	PageSize    int    `form:"pageSize"`
}
