package detection

import (
	"strings"
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

// UnknownCountry is the sentinel country code for samples whose address
// metadata carried a city but no country.
const UnknownCountry = "unknown"

// VisitedLocation is one aggregated (city, country) bucket accumulating
// time-weighted duration during a single away episode.
type VisitedLocation struct {
	City        string
	CountryCode string
	CountryName string

	// First-seen coordinates, kept for determinism
	Latitude  float64
	Longitude float64

	FirstVisit    time.Time
	LastVisit     time.Time
	DurationHours float64
	DataPoints    int
}

// VisitAggregator accumulates visited-location buckets for the current away
// episode. Entries keep their insertion order; everything downstream that
// breaks duration ties does so by first observation, never map order.
type VisitAggregator struct {
	entries []*VisitedLocation
	index   map[string]*VisitedLocation

	minCountryHours float64
	minCityHours    float64
}

// NewVisitAggregator creates an empty aggregator with the given filter floors
func NewVisitAggregator(minCountryHours, minCityHours float64) *VisitAggregator {
	return &VisitAggregator{
		index:           make(map[string]*VisitedLocation),
		minCountryHours: minCountryHours,
		minCityHours:    minCityHours,
	}
}

// Record folds one away-classified sample into the working set. prev is the
// previous sample of the same away episode, or nil at the episode start; the
// first sample at a new location contributes zero duration. Samples with no
// resolvable city are excluded from aggregation.
func (a *VisitAggregator) Record(sample, prev *models.LocationSample) {
	if sample.City == "" {
		return
	}

	country := strings.ToLower(sample.CountryCode)
	if country == "" {
		country = UnknownCountry
	}

	key := strings.ToLower(sample.City) + "|" + country
	entry, ok := a.index[key]
	if !ok {
		entry = &VisitedLocation{
			City:        sample.City,
			CountryCode: country,
			CountryName: sample.CountryName,
			Latitude:    sample.Latitude,
			Longitude:   sample.Longitude,
			FirstVisit:  sample.RecordedAt,
			LastVisit:   sample.RecordedAt,
			DataPoints:  1,
		}
		a.index[key] = entry
		a.entries = append(a.entries, entry)
		return
	}

	entry.DataPoints++
	entry.LastVisit = sample.RecordedAt
	if entry.CountryName == "" {
		entry.CountryName = sample.CountryName
	}
	if prev != nil {
		delta := sample.RecordedAt.Sub(prev.RecordedAt).Hours()
		if delta > 0 {
			entry.DurationHours += delta
		}
	}
}

// Entries returns the unfiltered working set in insertion order
func (a *VisitAggregator) Entries() []*VisitedLocation {
	return a.entries
}

// Empty reports whether no location has been recorded in this episode
func (a *VisitAggregator) Empty() bool {
	return len(a.entries) == 0
}

// TotalDataPoints returns the number of samples folded into the working set
func (a *VisitAggregator) TotalDataPoints() int {
	total := 0
	for _, e := range a.entries {
		total += e.DataPoints
	}
	return total
}

// Filter applies the two-tier significance filter at trip-finalization time:
// first every country whose aggregate duration over all entries falls short of
// the country floor is dropped, then surviving entries below the per-city
// floor are dropped. A country visited through several short stops can still
// clear the bar collectively. The unfiltered set is never mutated.
func (a *VisitAggregator) Filter() []*VisitedLocation {
	countryTotals := make(map[string]float64)
	for _, e := range a.entries {
		countryTotals[e.CountryCode] += e.DurationHours
	}

	var filtered []*VisitedLocation
	for _, e := range a.entries {
		if countryTotals[e.CountryCode] < a.minCountryHours {
			continue
		}
		if e.DurationHours < a.minCityHours {
			continue
		}
		filtered = append(filtered, e)
	}

	return filtered
}

// Reset clears the working set for the next away episode
func (a *VisitAggregator) Reset() {
	a.entries = nil
	a.index = make(map[string]*VisitedLocation)
}
