package models

import (
	"time"

	"github.com/triplog/trips-backend-go/internal/spatial"
)

// HomeReference kind constants
const (
	HomeKindAddress   = "home"
	HomeKindExclusion = "exclusion"
)

// HomeReference is a location the user treats as "not traveling": the
// configured home address, or a user-declared exclusion zone. Either the
// coordinates or the city name may be absent, never both in practice.
type HomeReference struct {
	ID   int64  `json:"id" db:"id"`
	Kind string `json:"kind" db:"kind"` // home, exclusion

	City        string  `json:"city,omitempty" db:"city"`
	CountryCode string  `json:"countryCode,omitempty" db:"country_code"`
	Latitude    float64 `json:"latitude" db:"latitude"`   // NaN when absent
	Longitude   float64 `json:"longitude" db:"longitude"` // NaN when absent

	CreatedAt time.Time `json:"createdAt,omitempty" db:"created_at"`
}

// HasCoordinates reports whether the reference carries a usable coordinate pair
func (h *HomeReference) HasCoordinates() bool {
	return spatial.ValidCoordinates(h.Latitude, h.Longitude)
}
