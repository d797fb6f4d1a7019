package detection

import (
	"math"
	"testing"
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

func newTestMachine(rangeStart time.Time) (*StateMachine, *VisitAggregator) {
	refs := []models.HomeReference{{
		Kind:        models.HomeKindAddress,
		City:        "Amsterdam",
		CountryCode: "nl",
		Latitude:    math.NaN(),
		Longitude:   math.NaN(),
	}}
	classifier := NewPointClassifier(refs, 50)
	assembler := NewTripAssembler(24, 24, "nl")
	visits := NewVisitAggregator(24, 2)
	return NewStateMachine(classifier, assembler, visits, 3, rangeStart), visits
}

func atHome(at time.Time) *models.LocationSample {
	s := citySample(at, "Amsterdam", "nl", "Netherlands")
	return &s
}

func inParis(at time.Time) *models.LocationSample {
	s := citySample(at, "Paris", "fr", "France")
	return &s
}

func feed(t *testing.T, m *StateMachine, samples ...*models.LocationSample) *models.Trip {
	t.Helper()
	var trip *models.Trip
	for _, s := range samples {
		if got := m.Advance(s); got != nil {
			if trip != nil {
				t.Fatalf("unexpected second trip %q", got.Title)
			}
			trip = got
		}
	}
	return trip
}

func TestAdvance_DebounceHoldsAgainstStraySamples(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	// Three consecutive away samples are not enough to flip the state
	trip := feed(t, m,
		atHome(hoursAfter(base, 8)),
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		atHome(hoursAfter(base, 10)),
	)

	if trip != nil {
		t.Fatalf("unexpected trip %q", trip.Title)
	}
	if m.State() != StateHome {
		t.Errorf("expected home state, got %s", m.State())
	}
}

func TestAdvance_FourthConsecutiveSampleCommits(t *testing.T) {
	base := day("2024-03-01")
	m, visits := newTestMachine(base)

	feed(t, m,
		atHome(hoursAfter(base, 8)),
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		inParis(hoursAfter(base, 9.6)),
	)

	if m.State() != StateAway {
		t.Fatalf("expected away state after 4 confirming samples, got %s", m.State())
	}
	// Only the committing sample is aggregated, with zero duration
	if visits.TotalDataPoints() != 1 {
		t.Errorf("expected 1 aggregated sample, got %d", visits.TotalDataPoints())
	}
}

func TestAdvance_ReconfirmationClearsPending(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	// A home sample wipes away confirmations; the counter must restart
	feed(t, m,
		atHome(hoursAfter(base, 8)),
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		atHome(hoursAfter(base, 10)),
		inParis(hoursAfter(base, 11)),
		inParis(hoursAfter(base, 11.2)),
		inParis(hoursAfter(base, 11.4)),
	)

	if m.State() != StateHome {
		t.Errorf("expected home state, confirmation count must restart after reconfirmation, got %s", m.State())
	}
}

func TestAdvance_FullRoundTripProducesTrip(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	trip := feed(t, m,
		atHome(hoursAfter(base, 6)),
		atHome(hoursAfter(base, 8)),
		// transition to away commits at the 4th sample
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		inParis(hoursAfter(base, 9.6)),
		// long stay abroad
		inParis(hoursAfter(base, 15)),
		inParis(hoursAfter(base, 21)),
		inParis(hoursAfter(base, 27)),
		inParis(hoursAfter(base, 33)),
		inParis(hoursAfter(base, 39)),
		// return home on the second day
		atHome(hoursAfter(base, 40)),
		atHome(hoursAfter(base, 40.2)),
		atHome(hoursAfter(base, 40.4)),
		atHome(hoursAfter(base, 40.6)),
	)

	if trip == nil {
		t.Fatal("expected a trip")
	}
	if trip.Title != "Trip to Paris" {
		t.Errorf("expected title %q, got %q", "Trip to Paris", trip.Title)
	}
	if trip.TripType != models.TripTypeCity {
		t.Errorf("expected city trip, got %s", trip.TripType)
	}
	// Start is backdated to the last confirmed home sample, end is the first
	// confirming home sample
	if trip.StartDate != "2024-03-01" {
		t.Errorf("expected start 2024-03-01, got %s", trip.StartDate)
	}
	if trip.EndDate != "2024-03-02" {
		t.Errorf("expected end 2024-03-02, got %s", trip.EndDate)
	}
	// 08:00 day one to 16:00 day two
	if trip.TotalDurationHours != 32 {
		t.Errorf("expected 32 hours, got %d", trip.TotalDurationHours)
	}
	if !trip.IsInternational {
		t.Error("expected international trip")
	}
	if m.State() != StateHome {
		t.Errorf("expected home state after return, got %s", m.State())
	}
}

func TestAdvance_ShortAbsenceProducesNoTrip(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	trip := feed(t, m,
		atHome(hoursAfter(base, 8)),
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		inParis(hoursAfter(base, 9.6)),
		inParis(hoursAfter(base, 14)),
		// back the same evening, well under the minimum duration
		atHome(hoursAfter(base, 18)),
		atHome(hoursAfter(base, 18.2)),
		atHome(hoursAfter(base, 18.4)),
		atHome(hoursAfter(base, 18.6)),
	)

	if trip != nil {
		t.Errorf("expected no trip for a %d hour absence, got %q", 10, trip.Title)
	}
	if m.State() != StateHome {
		t.Errorf("expected home state, got %s", m.State())
	}
}

func TestAdvance_TripStartUsesLatestHomeSample(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	trip := feed(t, m,
		atHome(hoursAfter(base, -40)), // two days before departure
		atHome(hoursAfter(base, 8)),
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		inParis(hoursAfter(base, 9.6)),
		inParis(hoursAfter(base, 15)),
		inParis(hoursAfter(base, 21)),
		inParis(hoursAfter(base, 27)),
		inParis(hoursAfter(base, 33)),
		inParis(hoursAfter(base, 39)),
		atHome(hoursAfter(base, 40)),
		atHome(hoursAfter(base, 40.2)),
		atHome(hoursAfter(base, 40.4)),
		atHome(hoursAfter(base, 40.6)),
	)

	if trip == nil {
		t.Fatal("expected a trip")
	}
	if trip.StartDate != "2024-03-01" {
		t.Errorf("start must track the most recent home sample, got %s", trip.StartDate)
	}
}

func TestFlush_ClosesOpenAwayEpisode(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	feed(t, m,
		atHome(hoursAfter(base, 8)),
		inParis(hoursAfter(base, 9)),
		inParis(hoursAfter(base, 9.2)),
		inParis(hoursAfter(base, 9.4)),
		inParis(hoursAfter(base, 9.6)),
		inParis(hoursAfter(base, 21)),
		inParis(hoursAfter(base, 33)),
		inParis(hoursAfter(base, 45)),
	)

	rangeEnd := day("2024-03-03").Add(-time.Second)
	trip := m.Flush(rangeEnd)
	if trip == nil {
		t.Fatal("expected open trip at range end")
	}
	if trip.EndDate != "2024-03-02" {
		t.Errorf("expected end date 2024-03-02, got %s", trip.EndDate)
	}
}

func TestFlush_NoopWhileHome(t *testing.T) {
	base := day("2024-03-01")
	m, _ := newTestMachine(base)

	feed(t, m, atHome(hoursAfter(base, 8)))

	if trip := m.Flush(day("2024-03-02")); trip != nil {
		t.Errorf("unexpected trip %q", trip.Title)
	}
}
