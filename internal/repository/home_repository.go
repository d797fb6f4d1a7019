package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/triplog/trips-backend-go/internal/database"
	"github.com/triplog/trips-backend-go/internal/models"
)

// HomeRepository handles database operations for home references and
// exclusion zones. It also backs the engine's home inference query.
type HomeRepository struct {
	db *sql.DB
}

// NewHomeRepository creates a new home repository
func NewHomeRepository(db *sql.DB) *HomeRepository {
	return &HomeRepository{db: db}
}

// ConfiguredHome returns the configured home address, or nil when unset
func (r *HomeRepository) ConfiguredHome(ctx context.Context) (*models.HomeReference, error) {
	query := `SELECT id, kind, city, country_code, latitude, longitude, created_at
		FROM home_locations WHERE kind = ? ORDER BY id LIMIT 1`

	ref, err := r.scanOne(ctx, query, models.HomeKindAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get configured home: %w", err)
	}
	return ref, nil
}

// ExclusionZones returns the user-declared exclusion zones in creation order
func (r *HomeRepository) ExclusionZones(ctx context.Context) ([]models.HomeReference, error) {
	query := `SELECT id, kind, city, country_code, latitude, longitude, created_at
		FROM home_locations WHERE kind = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, models.HomeKindExclusion)
	if err != nil {
		return nil, fmt.Errorf("failed to query exclusion zones: %w", err)
	}
	defer rows.Close()

	var zones []models.HomeReference
	for rows.Next() {
		ref, err := scanHomeReference(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *ref)
	}
	return zones, rows.Err()
}

// InferredHome synthesizes a home reference from the most-frequently visited
// city in the sample history. Each city counts once per calendar day so
// high-frequency recording days do not dominate; coordinates are the
// arithmetic mean of the city's observations. Returns nil when no sample
// carries a city.
func (r *HomeRepository) InferredHome(ctx context.Context) (*models.HomeReference, error) {
	query := `
		SELECT city, country_code,
		       COUNT(DISTINCT date(recorded_at, 'unixepoch')) AS day_count,
		       AVG(latitude) AS lat, AVG(longitude) AS lon
		FROM location_samples
		WHERE city IS NOT NULL AND city != ''
		GROUP BY lower(city)
		ORDER BY day_count DESC, city ASC
		LIMIT 1
	`

	var city string
	var countryCode sql.NullString
	var dayCount int
	var lat, lon sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query).Scan(&city, &countryCode, &dayCount, &lat, &lon)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to infer home city: %w", err)
	}

	return &models.HomeReference{
		Kind:        models.HomeKindAddress,
		City:        city,
		CountryCode: strings.ToLower(countryCode.String),
		Latitude:    floatOrNaN(lat),
		Longitude:   floatOrNaN(lon),
	}, nil
}

// ListAll returns every home reference, home address first
func (r *HomeRepository) ListAll(ctx context.Context) ([]models.HomeReference, error) {
	query := `SELECT id, kind, city, country_code, latitude, longitude, created_at
		FROM home_locations
		ORDER BY CASE kind WHEN 'home' THEN 0 ELSE 1 END, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query home locations: %w", err)
	}
	defer rows.Close()

	var refs []models.HomeReference
	for rows.Next() {
		ref, err := scanHomeReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	return refs, rows.Err()
}

// SaveHome replaces the configured home address
func (r *HomeRepository) SaveHome(ctx context.Context, ref *models.HomeReference) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM home_locations WHERE kind = ?", models.HomeKindAddress); err != nil {
			return fmt.Errorf("failed to clear previous home: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO home_locations (kind, city, country_code, latitude, longitude)
			VALUES (?, ?, ?, ?, ?)`,
			models.HomeKindAddress, nullString(ref.City), nullString(strings.ToLower(ref.CountryCode)),
			nullCoord(ref.Latitude), nullCoord(ref.Longitude),
		); err != nil {
			return fmt.Errorf("failed to insert home: %w", err)
		}
		return nil
	})
}

// AddExclusion adds an exclusion zone and returns its ID
func (r *HomeRepository) AddExclusion(ctx context.Context, ref *models.HomeReference) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO home_locations (kind, city, country_code, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)`,
		models.HomeKindExclusion, nullString(ref.City), nullString(strings.ToLower(ref.CountryCode)),
		nullCoord(ref.Latitude), nullCoord(ref.Longitude),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert exclusion zone: %w", err)
	}
	return res.LastInsertId()
}

// DeleteExclusion removes an exclusion zone by ID
func (r *HomeRepository) DeleteExclusion(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM home_locations WHERE id = ? AND kind = ?", id, models.HomeKindExclusion)
	if err != nil {
		return fmt.Errorf("failed to delete exclusion zone: %w", err)
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

func (r *HomeRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*models.HomeReference, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanHomeReference(rows)
}

func scanHomeReference(rows *sql.Rows) (*models.HomeReference, error) {
	var ref models.HomeReference
	var city, countryCode sql.NullString
	var lat, lon sql.NullFloat64
	var createdAt time.Time

	if err := rows.Scan(&ref.ID, &ref.Kind, &city, &countryCode, &lat, &lon, &createdAt); err != nil {
		return nil, fmt.Errorf("failed to scan home reference: %w", err)
	}

	ref.City = city.String
	ref.CountryCode = countryCode.String
	ref.Latitude = floatOrNaN(lat)
	ref.Longitude = floatOrNaN(lon)
	ref.CreatedAt = createdAt
	return &ref, nil
}
