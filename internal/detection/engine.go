package detection

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

// Thresholds is the canonical, tunable rule set of the detection engine
type Thresholds struct {
	ConfirmationPoints int     // opposite-state samples needed beyond this count to commit
	HomeRadiusKm       float64 // haversine radius around a home reference
	MinTripHours       float64 // minimum away duration for a trip
	MinCountryHours    float64 // per-country aggregate floor for filtering
	MinCityHours       float64 // per-city duration floor for filtering
	SamplePageSize     int     // samples fetched per page
}

// DefaultThresholds returns the canonical rule set
func DefaultThresholds() Thresholds {
	return Thresholds{
		ConfirmationPoints: 3,
		HomeRadiusKm:       50,
		MinTripHours:       24,
		MinCountryHours:    24,
		MinCityHours:       2,
		SamplePageSize:     1000,
	}
}

// SampleSource supplies location samples in ascending recorded-at order
type SampleSource interface {
	// FirstSampleTime returns the earliest sample instant, or nil when the
	// history is empty
	FirstSampleTime(ctx context.Context) (*time.Time, error)

	// CountSamples counts samples with recorded_at in [from, to)
	CountSamples(ctx context.Context, from, to time.Time) (int, error)

	// SamplePage returns one ascending page of samples with recorded_at in
	// [from, to)
	SamplePage(ctx context.Context, from, to time.Time, limit, offset int) ([]models.LocationSample, error)
}

// TripSource supplies existing trip spans and accepts detected trips
type TripSource interface {
	// ExistingTripRanges returns the date span of every trip regardless of
	// status, for exclusion from the scan
	ExistingTripRanges(ctx context.Context) ([]DateRange, error)

	// SaveTrip persists a detected trip with pending status
	SaveTrip(ctx context.Context, trip *models.Trip) error
}

// ProgressSink receives progress updates at page and date-range granularity
type ProgressSink interface {
	Progress(percent float64, message string)
}

// Summary is the outcome of one detection run
type Summary struct {
	TripsCreated    int
	RangesTotal     int
	RangesProcessed int
	Cancelled       bool
}

// Engine detects trips from a user's chronological location history. It
// processes one date range at a time, strictly in time order, holding only
// the current page and working state in memory. All collaborators are
// injected; the engine carries no ambient state and no internal concurrency.
type Engine struct {
	samples    SampleSource
	homes      HomeSource
	trips      TripSource
	progress   ProgressSink
	thresholds Thresholds
}

// NewEngine creates a detection engine over the given collaborators
func NewEngine(samples SampleSource, homes HomeSource, trips TripSource, progress ProgressSink, thresholds Thresholds) *Engine {
	if thresholds.SamplePageSize <= 0 {
		thresholds.SamplePageSize = DefaultThresholds().SamplePageSize
	}
	return &Engine{
		samples:    samples,
		homes:      homes,
		trips:      trips,
		progress:   progress,
		thresholds: thresholds,
	}
}

// Run executes one detection pass. requested limits the scan to a sub-span;
// nil means the full observed history up to tomorrow. Cancellation via ctx is
// a distinct non-error outcome: the in-flight range's partial state is
// discarded, trips from completed ranges are kept, and Summary.Cancelled is
// set. A collaborator failure aborts the current range and is returned as an
// error; trips already saved are never rolled back.
func (e *Engine) Run(ctx context.Context, requested *DateRange) (*Summary, error) {
	summary := &Summary{}

	refs, err := NewHomeResolver(e.homes).Resolve(ctx)
	if err != nil {
		return summary, err
	}

	homeCountry := ""
	for _, ref := range refs {
		if ref.CountryCode != "" {
			homeCountry = ref.CountryCode
			break
		}
	}

	full, ok, err := e.fullSpan(ctx, requested)
	if err != nil {
		return summary, err
	}
	if !ok {
		log.Printf("[DetectionEngine] no location history, nothing to do")
		e.report(100, "No location history to scan")
		return summary, nil
	}

	excluded, err := e.trips.ExistingTripRanges(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load existing trip ranges: %w", err)
	}

	ranges := AllocateDateRanges(full, excluded)
	summary.RangesTotal = len(ranges)
	if len(ranges) == 0 {
		log.Printf("[DetectionEngine] full span %s already covered by existing trips", full)
		e.report(100, "All dates already covered by existing trips")
		return summary, nil
	}

	log.Printf("[DetectionEngine] scanning %d date ranges in %s (%d home references)",
		len(ranges), full, len(refs))

	classifier := NewPointClassifier(refs, e.thresholds.HomeRadiusKm)
	assembler := NewTripAssembler(e.thresholds.MinTripHours, e.thresholds.MinCountryHours, homeCountry)

	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			summary.Cancelled = true
			log.Printf("[DetectionEngine] cancelled before range %s", r)
			return summary, nil
		}

		created, err := e.processRange(ctx, r, classifier, assembler, i, len(ranges))
		summary.TripsCreated += created
		if err != nil {
			if errors.Is(err, context.Canceled) {
				summary.Cancelled = true
				log.Printf("[DetectionEngine] cancelled inside range %s, partial state discarded", r)
				return summary, nil
			}
			return summary, fmt.Errorf("range %s: %w", r, err)
		}

		summary.RangesProcessed++
		e.report(float64(i+1)/float64(len(ranges))*100,
			fmt.Sprintf("Processed %d of %d date ranges", i+1, len(ranges)))
	}

	log.Printf("[DetectionEngine] run complete, %d trips created", summary.TripsCreated)
	e.report(100, fmt.Sprintf("Detection complete, %d trips created", summary.TripsCreated))
	return summary, nil
}

// fullSpan resolves the span to scan: the requested one, or first sample
// date through tomorrow. ok is false when there is no history at all.
func (e *Engine) fullSpan(ctx context.Context, requested *DateRange) (DateRange, bool, error) {
	if requested != nil {
		return *requested, true, nil
	}

	first, err := e.samples.FirstSampleTime(ctx)
	if err != nil {
		return DateRange{}, false, fmt.Errorf("failed to load first sample time: %w", err)
	}
	if first == nil {
		return DateRange{}, false, nil
	}

	return DateRange{
		Start: DateOf(*first),
		End:   DateOf(time.Now().UTC()).AddDate(0, 0, 1),
	}, true, nil
}

// processRange streams one date range through a fresh state machine. Samples
// are pulled in bounded pages to cap memory; cancellation is observed at page
// boundaries.
func (e *Engine) processRange(ctx context.Context, r DateRange, classifier *PointClassifier, assembler *TripAssembler, rangeIndex, rangeCount int) (int, error) {
	from := r.Start
	to := r.End.AddDate(0, 0, 1) // exclusive upper bound

	total, err := e.samples.CountSamples(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	if total == 0 {
		return 0, nil
	}

	visits := NewVisitAggregator(e.thresholds.MinCountryHours, e.thresholds.MinCityHours)
	machine := NewStateMachine(classifier, assembler, visits, e.thresholds.ConfirmationPoints, r.Start)

	created := 0
	pageSize := e.thresholds.SamplePageSize
	for offset := 0; offset < total; offset += pageSize {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		page, err := e.samples.SamplePage(ctx, from, to, pageSize, offset)
		if err != nil {
			return created, fmt.Errorf("failed to fetch sample page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			if trip := machine.Advance(&page[i]); trip != nil {
				if err := e.trips.SaveTrip(ctx, trip); err != nil {
					return created, fmt.Errorf("failed to save trip %q: %w", trip.Title, err)
				}
				created++
				log.Printf("[DetectionEngine] trip detected: %q (%s, %s..%s)",
					trip.Title, trip.TripType, trip.StartDate, trip.EndDate)
			}
		}

		done := offset + len(page)
		if done > total {
			done = total
		}
		pageFraction := float64(done) / float64(total)
		e.report((float64(rangeIndex)+pageFraction)/float64(rangeCount)*100,
			fmt.Sprintf("Range %s: %d of %d samples", r, done, total))

		if len(page) < pageSize {
			break
		}
	}

	// Still away at the end of the range: close the episode at end of day so
	// ongoing travel is not dropped
	endOfRange := to.Add(-time.Second)
	if trip := machine.Flush(endOfRange); trip != nil {
		if err := e.trips.SaveTrip(ctx, trip); err != nil {
			return created, fmt.Errorf("failed to save open trip %q: %w", trip.Title, err)
		}
		created++
		log.Printf("[DetectionEngine] open trip detected at range end: %q (%s..%s)",
			trip.Title, trip.StartDate, trip.EndDate)
	}

	return created, nil
}

func (e *Engine) report(percent float64, message string) {
	if e.progress != nil {
		e.progress.Progress(percent, message)
	}
}
