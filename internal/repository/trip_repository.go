package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/triplog/trips-backend-go/internal/detection"
	"github.com/triplog/trips-backend-go/internal/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// ExistingTripRanges returns the date span of every trip regardless of
// status, for the date-range allocator's exclusion computation
func (r *TripRepository) ExistingTripRanges(ctx context.Context) ([]detection.DateRange, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT start_date, end_date FROM trips")
	if err != nil {
		return nil, fmt.Errorf("failed to query trip ranges: %w", err)
	}
	defer rows.Close()

	var ranges []detection.DateRange
	for rows.Next() {
		var startStr, endStr string
		if err := rows.Scan(&startStr, &endStr); err != nil {
			return nil, fmt.Errorf("failed to scan trip range: %w", err)
		}

		start, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return nil, fmt.Errorf("invalid trip start date %q: %w", startStr, err)
		}
		end, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return nil, fmt.Errorf("invalid trip end date %q: %w", endStr, err)
		}

		ranges = append(ranges, detection.DateRange{Start: start, End: end})
	}

	return ranges, rows.Err()
}

// SaveTrip persists a detected trip
func (r *TripRepository) SaveTrip(ctx context.Context, trip *models.Trip) error {
	citiesJSON, err := json.Marshal(trip.VisitedCities)
	if err != nil {
		return fmt.Errorf("failed to serialize cities: %w", err)
	}
	countriesJSON, err := json.Marshal(trip.VisitedCountries)
	if err != nil {
		return fmt.Errorf("failed to serialize countries: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO trips (start_date, end_date, title, trip_type, status,
			cities_json, countries_json, total_duration_hours, data_point_count, is_international)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trip.StartDate, trip.EndDate, trip.Title, trip.TripType, trip.Status,
		string(citiesJSON), string(countriesJSON),
		trip.TotalDurationHours, trip.DataPointCount, trip.IsInternational,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	trip.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read trip id: %w", err)
	}
	return nil
}

// GetTrips retrieves trips with filtering and pagination
func (r *TripRepository) GetTrips(filter models.TripFilter) ([]models.Trip, int64, error) {
	query := `SELECT id, start_date, end_date, title, trip_type, status,
		cities_json, countries_json, total_duration_hours, data_point_count, is_international,
		created_at, updated_at
		FROM trips`

	var conditions []string
	var args []interface{}

	if filter.StartDate != "" {
		conditions = append(conditions, "start_date >= ?")
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		conditions = append(conditions, "end_date <= ?")
		args = append(args, filter.EndDate)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.TripType != "" {
		conditions = append(conditions, "trip_type = ?")
		args = append(args, filter.TripType)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM trips"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}

	offset := (filter.Page - 1) * filter.PageSize
	query += " ORDER BY start_date DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, 0, err
		}
		trips = append(trips, *trip)
	}

	return trips, total, rows.Err()
}

// GetTripByID retrieves a single trip by ID, nil when not found
func (r *TripRepository) GetTripByID(id int64) (*models.Trip, error) {
	query := `SELECT id, start_date, end_date, title, trip_type, status,
		cities_json, countries_json, total_duration_hours, data_point_count, is_international,
		created_at, updated_at
		FROM trips WHERE id = ?`

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanTrip(rows)
}

// UpdateStatus transitions a trip's lifecycle status
func (r *TripRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE trips SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanTrip(rows *sql.Rows) (*models.Trip, error) {
	var t models.Trip
	var citiesJSON, countriesJSON sql.NullString

	if err := rows.Scan(
		&t.ID, &t.StartDate, &t.EndDate, &t.Title, &t.TripType, &t.Status,
		&citiesJSON, &countriesJSON, &t.TotalDurationHours, &t.DataPointCount, &t.IsInternational,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan trip: %w", err)
	}

	if citiesJSON.Valid && citiesJSON.String != "" {
		if err := json.Unmarshal([]byte(citiesJSON.String), &t.VisitedCities); err != nil {
			return nil, fmt.Errorf("failed to parse cities for trip %d: %w", t.ID, err)
		}
	}
	if countriesJSON.Valid && countriesJSON.String != "" {
		if err := json.Unmarshal([]byte(countriesJSON.String), &t.VisitedCountries); err != nil {
			return nil, fmt.Errorf("failed to parse countries for trip %d: %w", t.ID, err)
		}
	}

	return &t, nil
}
