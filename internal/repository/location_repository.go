package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/triplog/trips-backend-go/internal/database"
	"github.com/triplog/trips-backend-go/internal/models"
)

// LocationRepository handles database operations for location samples
type LocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FirstSampleTime returns the earliest recorded sample instant, or nil when
// the history is empty
func (r *LocationRepository) FirstSampleTime(ctx context.Context) (*time.Time, error) {
	var first sql.NullInt64
	err := r.db.QueryRowContext(ctx, "SELECT MIN(recorded_at) FROM location_samples").Scan(&first)
	if err != nil {
		return nil, fmt.Errorf("failed to query first sample time: %w", err)
	}
	if !first.Valid {
		return nil, nil
	}
	t := time.Unix(first.Int64, 0).UTC()
	return &t, nil
}

// CountSamples counts samples with recorded_at in [from, to)
func (r *LocationRepository) CountSamples(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM location_samples WHERE recorded_at >= ? AND recorded_at < ?",
		from.Unix(), to.Unix()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return count, nil
}

// SamplePage returns one ascending-time page of samples with recorded_at in
// [from, to)
func (r *LocationRepository) SamplePage(ctx context.Context, from, to time.Time, limit, offset int) ([]models.LocationSample, error) {
	query := `SELECT id, recorded_at, latitude, longitude, city, country_code, country_name
		FROM location_samples
		WHERE recorded_at >= ? AND recorded_at < ?
		ORDER BY recorded_at ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, from.Unix(), to.Unix(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sample page: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// GetSamples retrieves samples with filtering and pagination
func (r *LocationRepository) GetSamples(filter models.LocationSampleFilter) ([]models.LocationSample, int64, error) {
	query := `SELECT id, recorded_at, latitude, longitude, city, country_code, country_name
		FROM location_samples`

	var conditions []string
	var args []interface{}

	if filter.StartTime > 0 {
		conditions = append(conditions, "recorded_at >= ?")
		args = append(args, filter.StartTime)
	}
	if filter.EndTime > 0 {
		conditions = append(conditions, "recorded_at <= ?")
		args = append(args, filter.EndTime)
	}
	if filter.City != "" {
		conditions = append(conditions, "city = ?")
		args = append(args, filter.City)
	}
	if filter.CountryCode != "" {
		conditions = append(conditions, "country_code = ?")
		args = append(args, filter.CountryCode)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM location_samples"
	if len(conditions) > 0 {
		countQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count samples: %w", err)
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
	query += " ORDER BY recorded_at ASC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	if err != nil {
		return nil, 0, err
	}
	return samples, total, nil
}

// InsertSamples inserts a batch of samples in one transaction
func (r *LocationRepository) InsertSamples(ctx context.Context, samples []models.LocationSample) error {
	if len(samples) == 0 {
		return nil
	}

	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO location_samples (recorded_at, latitude, longitude, city, country_code, country_name)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i := range samples {
			s := &samples[i]
			_, err := stmt.ExecContext(ctx,
				s.RecordedAt.Unix(),
				nullCoord(s.Latitude), nullCoord(s.Longitude),
				nullString(s.City), nullString(strings.ToLower(s.CountryCode)), nullString(s.CountryName),
			)
			if err != nil {
				return fmt.Errorf("failed to insert sample: %w", err)
			}
		}
		return nil
	})
}

func scanSamples(rows *sql.Rows) ([]models.LocationSample, error) {
	var samples []models.LocationSample
	for rows.Next() {
		var s models.LocationSample
		var recordedAt int64
		var lat, lon sql.NullFloat64
		var city, countryCode, countryName sql.NullString

		if err := rows.Scan(&s.ID, &recordedAt, &lat, &lon, &city, &countryCode, &countryName); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}

		s.RecordedAt = time.Unix(recordedAt, 0).UTC()
		s.Latitude = floatOrNaN(lat)
		s.Longitude = floatOrNaN(lon)
		s.City = city.String
		s.CountryCode = countryCode.String
		s.CountryName = countryName.String

		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return samples, nil
}

// floatOrNaN maps an absent nullable float to NaN, the in-memory marker for
// a missing coordinate
func floatOrNaN(v sql.NullFloat64) float64 {
	if v.Valid {
		return v.Float64
	}
	return math.NaN()
}

func nullCoord(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}
