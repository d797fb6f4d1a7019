package repository

import (
	"database/sql"
	"fmt"

	"github.com/triplog/trips-backend-go/internal/models"
)

// DetectionTaskRepository handles database operations for detection tasks
type DetectionTaskRepository struct {
	db *sql.DB
}

// NewDetectionTaskRepository creates a new detection task repository
func NewDetectionTaskRepository(db *sql.DB) *DetectionTaskRepository {
	return &DetectionTaskRepository{db: db}
}

// Create inserts a new task and sets its ID
func (r *DetectionTaskRepository) Create(task *models.DetectionTask) error {
	res, err := r.db.Exec(`
		INSERT INTO detection_tasks (public_id, status, progress_percent, message, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		task.PublicID, task.Status, task.ProgressPercent, nullString(task.Message),
		nullString(task.StartDate), nullString(task.EndDate),
	)
	if err != nil {
		return fmt.Errorf("failed to create detection task: %w", err)
	}

	task.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	return nil
}

// GetByID retrieves a task by internal ID, nil when not found
func (r *DetectionTaskRepository) GetByID(id int64) (*models.DetectionTask, error) {
	return r.getOne("id = ?", id)
}

// GetByPublicID retrieves a task by its public uuid, nil when not found
func (r *DetectionTaskRepository) GetByPublicID(publicID string) (*models.DetectionTask, error) {
	return r.getOne("public_id = ?", publicID)
}

// List retrieves tasks, newest first, with optional status filter
func (r *DetectionTaskRepository) List(status string, limit, offset int) ([]*models.DetectionTask, error) {
	query := `SELECT id, public_id, status, progress_percent, message, start_date, end_date,
		trips_created, ranges_total, ranges_processed, error_message,
		created_at, started_at, completed_at, updated_at
		FROM detection_tasks`

	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query detection tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.DetectionTask
	for rows.Next() {
		task, err := scanDetectionTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// MarkRunning marks a task as running
func (r *DetectionTaskRepository) MarkRunning(id int64) error {
	return r.exec(`
		UPDATE detection_tasks
		SET status = ?, started_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, models.TaskStatusRunning, id)
}

// UpdateProgress records progress for a running task
func (r *DetectionTaskRepository) UpdateProgress(id int64, percent float64, message string) error {
	return r.exec(`
		UPDATE detection_tasks
		SET progress_percent = ?, message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, percent, message, id)
}

// MarkCompleted marks a task as completed with its run results
func (r *DetectionTaskRepository) MarkCompleted(id int64, tripsCreated, rangesTotal, rangesProcessed int) error {
	return r.exec(`
		UPDATE detection_tasks
		SET status = ?, progress_percent = 100, trips_created = ?, ranges_total = ?, ranges_processed = ?,
		    completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, models.TaskStatusCompleted, tripsCreated, rangesTotal, rangesProcessed, id)
}

// MarkFailed marks a task as failed, preserving how far processing reached so
// a retry can resume from the next unprocessed range
func (r *DetectionTaskRepository) MarkFailed(id int64, errorMsg string, tripsCreated, rangesTotal, rangesProcessed int) error {
	return r.exec(`
		UPDATE detection_tasks
		SET status = ?, error_message = ?, trips_created = ?, ranges_total = ?, ranges_processed = ?,
		    completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, models.TaskStatusFailed, errorMsg, tripsCreated, rangesTotal, rangesProcessed, id)
}

// MarkCancelled marks a task as cancelled; cancellation is a control-flow
// outcome, not a failure
func (r *DetectionTaskRepository) MarkCancelled(id int64, message string, tripsCreated, rangesTotal, rangesProcessed int) error {
	return r.exec(`
		UPDATE detection_tasks
		SET status = ?, message = ?, trips_created = ?, ranges_total = ?, ranges_processed = ?,
		    completed_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, models.TaskStatusCancelled, message, tripsCreated, rangesTotal, rangesProcessed, id)
}

func (r *DetectionTaskRepository) exec(query string, args ...interface{}) error {
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update detection task: %w", err)
	}
	return nil
}

func (r *DetectionTaskRepository) getOne(where string, arg interface{}) (*models.DetectionTask, error) {
	query := `SELECT id, public_id, status, progress_percent, message, start_date, end_date,
		trips_created, ranges_total, ranges_processed, error_message,
		created_at, started_at, completed_at, updated_at
		FROM detection_tasks WHERE ` + where

	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to get detection task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanDetectionTask(rows)
}

func scanDetectionTask(rows *sql.Rows) (*models.DetectionTask, error) {
	var t models.DetectionTask
	var message, startDate, endDate, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime

	if err := rows.Scan(
		&t.ID, &t.PublicID, &t.Status, &t.ProgressPercent, &message, &startDate, &endDate,
		&t.TripsCreated, &t.RangesTotal, &t.RangesProcessed, &errorMessage,
		&t.CreatedAt, &startedAt, &completedAt, &t.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan detection task: %w", err)
	}

	t.Message = message.String
	t.StartDate = startDate.String
	t.EndDate = endDate.String
	t.ErrorMessage = errorMessage.String
	if startedAt.Valid {
		ts := startedAt.Time
		t.StartedAt = &ts
	}
	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}

	return &t, nil
}
