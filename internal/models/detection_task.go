package models

import "time"

// DetectionTask status constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
	TaskStatusCancelled = "cancelled"
)

// DetectionTask represents one asynchronous trip detection run over the
// user's location history.
type DetectionTask struct {
	ID       int64  `json:"id" db:"id"`
	PublicID string `json:"publicId" db:"public_id"` // uuid handed to API clients

	Status          string  `json:"status" db:"status"`
	ProgressPercent float64 `json:"progressPercent" db:"progress_percent"`
	Message         string  `json:"message,omitempty" db:"message"`

	// Optional requested sub-span; empty means full history
	StartDate string `json:"startDate,omitempty" db:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"endDate,omitempty" db:"end_date"`     // YYYY-MM-DD

	// Results
	TripsCreated    int    `json:"tripsCreated" db:"trips_created"`
	RangesTotal     int    `json:"rangesTotal" db:"ranges_total"`
	RangesProcessed int    `json:"rangesProcessed" db:"ranges_processed"`
	ErrorMessage    string `json:"errorMessage,omitempty" db:"error_message"`

	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	StartedAt   *time.Time `json:"startedAt,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsTerminal reports whether the task has reached a final status
func (t *DetectionTask) IsTerminal() bool {
	switch t.Status {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}
