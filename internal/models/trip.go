package models

import "time"

// Trip type constants
const (
	TripTypeCity         = "city"
	TripTypeMultiCity    = "multi-city"
	TripTypeCountry      = "country"
	TripTypeMultiCountry = "multi-country"
)

// Trip status constants
const (
	TripStatusPending  = "pending"
	TripStatusApproved = "approved"
	TripStatusRejected = "rejected"
)

// Trip represents a detected trip: a contiguous span of time spent away from
// home, with a generated title and visited-location metadata.
type Trip struct {
	ID int64 `json:"id" db:"id"`

	StartDate string `json:"startDate" db:"start_date"` // YYYY-MM-DD, inclusive
	EndDate   string `json:"endDate" db:"end_date"`     // YYYY-MM-DD, inclusive

	Title    string `json:"title" db:"title"`
	TripType string `json:"tripType" db:"trip_type"` // city, multi-city, country, multi-country
	Status   string `json:"status" db:"status"`      // pending, approved, rejected

	// Metadata
	VisitedCities      []string `json:"visitedCities" db:"cities_json"`
	VisitedCountries   []string `json:"visitedCountries" db:"countries_json"`
	TotalDurationHours int      `json:"totalDurationHours" db:"total_duration_hours"`
	DataPointCount     int      `json:"dataPointCount" db:"data_point_count"`
	IsInternational    bool     `json:"isInternational" db:"is_international"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// DayCount returns the number of calendar days the trip spans: the overnight
// count plus one, never less than one.
func (t *Trip) DayCount() int {
	start, err1 := time.Parse("2006-01-02", t.StartDate)
	end, err2 := time.Parse("2006-01-02", t.EndDate)
	if err1 != nil || err2 != nil {
		return 1
	}
	nights := int(end.Sub(start).Hours() / 24)
	if nights < 0 {
		nights = 0
	}
	return nights + 1
}

// TripsResponse represents a paginated response of trips
type TripsResponse struct {
	Data       []Trip `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}

// TripFilter represents filter parameters for querying trips
type TripFilter struct {
	StartDate string `form:"startDate"` // YYYY-MM-DD
	EndDate   string `form:"endDate"`   // YYYY-MM-DD
	Status    string `form:"status"`
	TripType  string `form:"tripType"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
