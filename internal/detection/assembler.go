package detection

import (
	"math"
	"strings"
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

// TripAssembler validates a finished away episode and shapes it into a trip
// record. Episodes shorter than the minimum duration, or with no surviving
// visited location, silently produce no trip.
type TripAssembler struct {
	minTripHours    float64
	minCountryHours float64
	homeCountryCode string
}

// NewTripAssembler creates an assembler for one detection run
func NewTripAssembler(minTripHours, minCountryHours float64, homeCountryCode string) *TripAssembler {
	return &TripAssembler{
		minTripHours:    minTripHours,
		minCountryHours: minCountryHours,
		homeCountryCode: strings.ToLower(homeCountryCode),
	}
}

// Assemble builds a pending trip from the away episode spanning awayStart to
// awayEnd, or returns nil when the episode does not qualify
func (a *TripAssembler) Assemble(visits *VisitAggregator, awayStart, awayEnd time.Time) *models.Trip {
	awayHours := awayEnd.Sub(awayStart).Hours()
	if awayHours < a.minTripHours {
		return nil
	}

	filtered := visits.Filter()
	if len(filtered) == 0 {
		return nil
	}

	title, tripType := GenerateTitle(filtered, visits.Entries(), a.homeCountryCode, a.minCountryHours)

	var cities []string
	countrySeen := make(map[string]bool)
	var countries []string
	international := false
	for _, e := range filtered {
		cities = append(cities, e.City)
		if !countrySeen[e.CountryCode] {
			countrySeen[e.CountryCode] = true
			countries = append(countries, countryDisplayName(filtered, e.CountryCode))
		}
		if e.CountryCode != UnknownCountry && e.CountryCode != a.homeCountryCode {
			international = true
		}
	}

	return &models.Trip{
		StartDate:          awayStart.UTC().Format("2006-01-02"),
		EndDate:            awayEnd.UTC().Format("2006-01-02"),
		Title:              title,
		TripType:           tripType,
		Status:             models.TripStatusPending,
		VisitedCities:      cities,
		VisitedCountries:   countries,
		TotalDurationHours: int(math.Round(awayHours)),
		DataPointCount:     visits.TotalDataPoints(),
		IsInternational:    international,
	}
}
