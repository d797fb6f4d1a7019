package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/triplog/trips-backend-go/internal/config"
	"github.com/triplog/trips-backend-go/internal/detection"
	"github.com/triplog/trips-backend-go/internal/models"
	"github.com/triplog/trips-backend-go/internal/repository"
)

// DetectionService orchestrates asynchronous trip detection runs. Runs
// execute in-process, one goroutine per task; the cancel registry lets a
// running task be stopped cooperatively.
type DetectionService struct {
	tasks   *repository.DetectionTaskRepository
	samples *repository.LocationRepository
	homes   *repository.HomeRepository
	trips   *repository.TripRepository
	cfg     config.DetectionConfig

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
}

// NewDetectionService creates a new detection service
func NewDetectionService(
	tasks *repository.DetectionTaskRepository,
	samples *repository.LocationRepository,
	homes *repository.HomeRepository,
	trips *repository.TripRepository,
	cfg config.DetectionConfig,
) *DetectionService {
	return &DetectionService{
		tasks:   tasks,
		samples: samples,
		homes:   homes,
		trips:   trips,
		cfg:     cfg,
		cancels: make(map[int64]context.CancelFunc),
	}
}

// StartDetection creates a detection task and starts the engine
// asynchronously. startDate/endDate optionally restrict the scan; both must
// be YYYY-MM-DD and given together.
func (s *DetectionService) StartDetection(startDate, endDate string) (*models.DetectionTask, error) {
	requested, err := parseRequestedRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	task := &models.DetectionTask{
		PublicID:  uuid.NewString(),
		Status:    models.TaskStatusPending,
		StartDate: startDate,
		EndDate:   endDate,
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancels[task.ID] = cancel
	s.mu.Unlock()

	go s.runDetection(ctx, task.ID, requested)

	return task, nil
}

// runDetection executes the engine for one task and records the outcome
func (s *DetectionService) runDetection(ctx context.Context, taskID int64, requested *detection.DateRange) {
	defer func() {
		s.mu.Lock()
		if cancel, ok := s.cancels[taskID]; ok {
			cancel()
			delete(s.cancels, taskID)
		}
		s.mu.Unlock()
	}()

	log.Printf("[DetectionService] starting detection run for task %d", taskID)

	if err := s.tasks.MarkRunning(taskID); err != nil {
		log.Printf("[DetectionService] failed to mark task %d as running: %v", taskID, err)
		return
	}

	engine := detection.NewEngine(
		s.samples, s.homes, s.trips,
		&taskProgressSink{tasks: s.tasks, taskID: taskID},
		detection.Thresholds{
			ConfirmationPoints: s.cfg.ConfirmationPoints,
			HomeRadiusKm:       s.cfg.HomeRadiusKm,
			MinTripHours:       s.cfg.MinTripHours,
			MinCountryHours:    s.cfg.MinCountryHours,
			MinCityHours:       s.cfg.MinCityHours,
			SamplePageSize:     s.cfg.SamplePageSize,
		},
	)

	summary, err := engine.Run(ctx, requested)

	switch {
	case err != nil:
		log.Printf("[DetectionService] task %d failed: %v", taskID, err)
		s.tasks.MarkFailed(taskID, err.Error(),
			summary.TripsCreated, summary.RangesTotal, summary.RangesProcessed)
	case summary.Cancelled:
		log.Printf("[DetectionService] task %d cancelled after %d of %d ranges",
			taskID, summary.RangesProcessed, summary.RangesTotal)
		s.tasks.MarkCancelled(taskID,
			fmt.Sprintf("Stopped after %d of %d date ranges", summary.RangesProcessed, summary.RangesTotal),
			summary.TripsCreated, summary.RangesTotal, summary.RangesProcessed)
	default:
		log.Printf("[DetectionService] task %d completed, %d trips created", taskID, summary.TripsCreated)
		s.tasks.MarkCompleted(taskID,
			summary.TripsCreated, summary.RangesTotal, summary.RangesProcessed)
	}
}

// CancelTask requests cooperative cancellation of a running task
func (s *DetectionService) CancelTask(publicID string) error {
	task, err := s.tasks.GetByPublicID(publicID)
	if err != nil {
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return ErrNotFound
	}
	if task.IsTerminal() {
		return fmt.Errorf("task is already in terminal state: %s", task.Status)
	}

	s.mu.Lock()
	cancel, ok := s.cancels[task.ID]
	s.mu.Unlock()

	if ok {
		cancel()
		return nil
	}

	// No goroutine owns the task (e.g. a pending task orphaned by a restart)
	return s.tasks.MarkCancelled(task.ID, "Cancelled before execution",
		task.TripsCreated, task.RangesTotal, task.RangesProcessed)
}

// GetTask retrieves a task by public ID, nil when not found
func (s *DetectionService) GetTask(publicID string) (*models.DetectionTask, error) {
	return s.tasks.GetByPublicID(publicID)
}

// ListTasks retrieves tasks with optional status filter
func (s *DetectionService) ListTasks(status string, limit, offset int) ([]*models.DetectionTask, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.tasks.List(status, limit, offset)
}

// taskProgressSink writes engine progress into the task record
type taskProgressSink struct {
	tasks  *repository.DetectionTaskRepository
	taskID int64
}

func (p *taskProgressSink) Progress(percent float64, message string) {
	if err := p.tasks.UpdateProgress(p.taskID, percent, message); err != nil {
		log.Printf("[DetectionService] failed to update progress for task %d: %v", p.taskID, err)
	}
}

func parseRequestedRange(startDate, endDate string) (*detection.DateRange, error) {
	if startDate == "" && endDate == "" {
		return nil, nil
	}
	if startDate == "" || endDate == "" {
		return nil, fmt.Errorf("startDate and endDate must be given together")
	}

	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("endDate precedes startDate")
	}

	return &detection.DateRange{Start: start, End: end}, nil
}
