package detection

import (
	"math"
	"testing"
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

func citySample(at time.Time, city, cc, country string) models.LocationSample {
	return models.LocationSample{
		RecordedAt:  at,
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
		City:        city,
		CountryCode: cc,
		CountryName: country,
	}
}

func hoursAfter(base time.Time, h float64) time.Time {
	return base.Add(time.Duration(h * float64(time.Hour)))
}

// recordStay feeds a stay of the given length at one location into the
// aggregator, sample by sample, threading prev like the state machine does
func recordStay(a *VisitAggregator, start time.Time, hours float64, city, cc, country string, prev *models.LocationSample) *models.LocationSample {
	first := citySample(start, city, cc, country)
	a.Record(&first, prev)
	last := citySample(hoursAfter(start, hours), city, cc, country)
	a.Record(&last, &first)
	return &last
}

func TestRecord_FirstSampleContributesZeroDuration(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	s := citySample(base, "Paris", "fr", "France")
	a.Record(&s, nil)

	entries := a.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].DurationHours != 0 {
		t.Errorf("expected zero duration for first sample, got %f", entries[0].DurationHours)
	}
	if entries[0].DataPoints != 1 {
		t.Errorf("expected 1 data point, got %d", entries[0].DataPoints)
	}
}

func TestRecord_AccumulatesTimeWeightedDuration(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	prev := citySample(base, "Paris", "fr", "France")
	a.Record(&prev, nil)
	next := citySample(hoursAfter(base, 3), "Paris", "fr", "France")
	a.Record(&next, &prev)

	e := a.Entries()[0]
	if e.DurationHours != 3 {
		t.Errorf("expected 3 hours, got %f", e.DurationHours)
	}
	if e.DataPoints != 2 {
		t.Errorf("expected 2 data points, got %d", e.DataPoints)
	}
	if !e.LastVisit.Equal(next.RecordedAt) {
		t.Errorf("expected last visit %v, got %v", next.RecordedAt, e.LastVisit)
	}
}

func TestRecord_MissingCountryUsesUnknownSentinel(t *testing.T) {
	a := NewVisitAggregator(24, 2)

	s := citySample(day("2024-03-01"), "Atlantis", "", "")
	a.Record(&s, nil)

	if got := a.Entries()[0].CountryCode; got != UnknownCountry {
		t.Errorf("expected %q country code, got %q", UnknownCountry, got)
	}
}

func TestRecord_SkipsSamplesWithoutCity(t *testing.T) {
	a := NewVisitAggregator(24, 2)

	s := citySample(day("2024-03-01"), "", "fr", "France")
	a.Record(&s, nil)

	if !a.Empty() {
		t.Errorf("expected empty aggregator, got %d entries", len(a.Entries()))
	}
}

func TestRecord_KeysAreCaseInsensitive(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	prev := citySample(base, "Paris", "FR", "France")
	a.Record(&prev, nil)
	next := citySample(hoursAfter(base, 2), "paris", "fr", "France")
	a.Record(&next, &prev)

	if len(a.Entries()) != 1 {
		t.Fatalf("expected a single bucket for case variants, got %d", len(a.Entries()))
	}
	if got := a.Entries()[0].CountryCode; got != "fr" {
		t.Errorf("expected lowercased country code, got %q", got)
	}
}

func TestFilter_CountryClearsFloorCollectively(t *testing.T) {
	// No single city reaches 24h, but the country aggregate does, so every
	// city above the per-city floor survives
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	prev := recordStay(a, base, 12, "Brussels", "be", "Belgium", nil)
	prev = recordStay(a, hoursAfter(base, 12), 8, "Antwerp", "be", "Belgium", prev)
	recordStay(a, hoursAfter(base, 20), 6, "Ghent", "be", "Belgium", prev)

	filtered := a.Filter()
	if len(filtered) != 3 {
		t.Fatalf("expected all 3 cities to survive, got %d", len(filtered))
	}
}

func TestFilter_CityBelowFloorDroppedEvenWhenCountryQualifies(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	prev := recordStay(a, base, 25, "Brussels", "be", "Belgium", nil)
	recordStay(a, hoursAfter(base, 25), 1, "Ghent", "be", "Belgium", prev)

	filtered := a.Filter()
	if len(filtered) != 1 {
		t.Fatalf("expected 1 surviving city, got %d", len(filtered))
	}
	if filtered[0].City != "Brussels" {
		t.Errorf("expected Brussels to survive, got %s", filtered[0].City)
	}
}

func TestFilter_ShortStopsAcrossCountriesAllDropped(t *testing.T) {
	// Each country total falls short of the floor, so nothing survives even
	// though each city clears the per-city floor
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	prev := recordStay(a, base, 10, "Luxembourg", "lu", "Luxembourg", nil)
	prev = recordStay(a, hoursAfter(base, 10), 10, "Brussels", "be", "Belgium", prev)
	recordStay(a, hoursAfter(base, 20), 10, "Maastricht", "nl", "Netherlands", prev)

	if filtered := a.Filter(); len(filtered) != 0 {
		t.Errorf("expected empty filtered set, got %d entries", len(filtered))
	}
}

func TestFilter_DoesNotMutateWorkingSet(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	recordStay(a, base, 1, "Ghent", "be", "Belgium", nil)

	a.Filter()
	if len(a.Entries()) != 1 {
		t.Errorf("filter must not mutate the working set, got %d entries", len(a.Entries()))
	}
}

func TestReset_ClearsWorkingSet(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	recordStay(a, day("2024-03-01"), 5, "Paris", "fr", "France", nil)

	a.Reset()

	if !a.Empty() {
		t.Errorf("expected empty aggregator after reset")
	}
	if a.TotalDataPoints() != 0 {
		t.Errorf("expected zero data points after reset, got %d", a.TotalDataPoints())
	}
}

func TestRecord_BackwardsTimestampIgnored(t *testing.T) {
	a := NewVisitAggregator(24, 2)
	base := day("2024-03-01")

	prev := citySample(hoursAfter(base, 5), "Paris", "fr", "France")
	a.Record(&prev, nil)
	earlier := citySample(base, "Paris", "fr", "France")
	a.Record(&earlier, &prev)

	if got := a.Entries()[0].DurationHours; got != 0 {
		t.Errorf("expected negative delta to be discarded, got %f", got)
	}
}
