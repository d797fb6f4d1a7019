package detection

import (
	"time"

	"github.com/triplog/trips-backend-go/internal/models"
)

// pendingTransition tracks an unconfirmed Home/Away flip. At most one exists
// at any time; any sample reconfirming the current state clears it.
type pendingTransition struct {
	target     LocationState
	startTime  time.Time
	confirming int
}

// StateMachine consumes chronologically ordered samples and commits debounced
// Home/Away transitions. A single off-state sample never flips the state: a
// stray ping while driving through a border city must not start or end a
// trip. The debounce counts samples rather than a time window because sample
// density varies.
type StateMachine struct {
	classifier         *PointClassifier
	assembler          *TripAssembler
	visits             *VisitAggregator
	confirmationPoints int

	current       LocationState
	currentStart  time.Time
	pointsInState int

	// Start time of the most recent confirmed Home period; trip starts are
	// backdated to this instant
	lastHomeStart time.Time

	pending  *pendingTransition
	prevAway *models.LocationSample
}

// NewStateMachine creates a machine for one date range, starting in the Home
// state at rangeStart
func NewStateMachine(classifier *PointClassifier, assembler *TripAssembler, visits *VisitAggregator, confirmationPoints int, rangeStart time.Time) *StateMachine {
	return &StateMachine{
		classifier:         classifier,
		assembler:          assembler,
		visits:             visits,
		confirmationPoints: confirmationPoints,
		current:            StateHome,
		currentStart:       rangeStart,
		lastHomeStart:      rangeStart,
	}
}

// Advance feeds one sample through the machine. Returns a trip when the
// sample commits a transition back to Home that finalizes a qualifying away
// episode, nil otherwise.
func (m *StateMachine) Advance(sample *models.LocationSample) *models.Trip {
	state := m.classifier.Classify(sample)

	if state == m.current {
		m.pointsInState++
		if m.current == StateHome {
			m.lastHomeStart = sample.RecordedAt
		} else {
			m.visits.Record(sample, m.prevAway)
			m.prevAway = sample
		}
		m.pending = nil
		return nil
	}

	if m.pending != nil && m.pending.target == state {
		m.pending.confirming++
		if m.pending.confirming > m.confirmationPoints {
			return m.commit(sample)
		}
		return nil
	}

	m.pending = &pendingTransition{
		target:     state,
		startTime:  sample.RecordedAt,
		confirming: 1,
	}
	return nil
}

// commit flips the state once enough consecutive samples confirmed the
// pending transition
func (m *StateMachine) commit(sample *models.LocationSample) *models.Trip {
	p := m.pending
	m.pending = nil
	m.currentStart = p.startTime
	m.pointsInState = p.confirming

	if p.target == StateHome {
		// The away episode ended when the first confirming Home sample was
		// observed, not when the transition committed
		trip := m.assembler.Assemble(m.visits, m.lastHomeStart, p.startTime)
		m.current = StateHome
		m.lastHomeStart = p.startTime
		m.visits.Reset()
		m.prevAway = nil
		return trip
	}

	m.current = StateAway
	m.visits.Record(sample, nil)
	m.prevAway = sample
	return nil
}

// Flush finalizes an open away episode at the end of a date range. Travel
// still ongoing when the range runs out of samples must not be dropped, so
// the range end stands in for the unconfirmed return home.
func (m *StateMachine) Flush(rangeEnd time.Time) *models.Trip {
	if m.current == StateAway && !m.visits.Empty() {
		return m.assembler.Assemble(m.visits, m.lastHomeStart, rangeEnd)
	}
	return nil
}

// State returns the current confirmed state, for logging
func (m *StateMachine) State() LocationState {
	return m.current
}
