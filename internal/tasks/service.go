package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
	"github.com/ayush/task-manager/backend/internal/query"
)

// Store defines the interface for task persistence. Every method is scoped
// to ownerID; a task owned by someone else is reported as models.ErrNotFound.
type Store interface {
	CreateTask(ctx context.Context, t *models.Task) error
	ListTasks(ctx context.Context, ownerID string, f query.Filter, s query.Sort) ([]models.Task, error)
	GetTask(ctx context.Context, ownerID, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id string, patch models.TaskPatch, now time.Time) (*models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
}

var errTaskNotFound = apperr.New(apperr.NotFound, "Task not found")

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create validates in and stores a task owned by ownerID. The owner always
// comes from the authenticated subject.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*models.Task, error) {
	if in.Title == nil {
		return nil, ErrTitleRequired
	}
	patch, err := in.toPatch()
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		UserID:      ownerID,
		Title:       *patch.Title,
		Description: patch.Description,
		Status:      models.TaskPending,
		Priority:    models.PriorityMedium,
		DueDate:     patch.DueDate,
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to create task", err)
	}
	return t, nil
}

// List returns ownerID's tasks matching f, ordered by srt.
func (s *Service) List(ctx context.Context, ownerID string, f query.Filter, srt query.Sort) ([]models.Task, error) {
	tasks, err := s.store.ListTasks(ctx, ownerID, f, srt)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch tasks", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Task, error) {
	t, err := s.store.GetTask(ctx, ownerID, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, errTaskNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch task", err)
	}
	return t, nil
}

// Update replaces the supplied fields and refreshes updated_at.
func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (*models.Task, error) {
	if in.empty() {
		return nil, ErrNoFieldsToPatch
	}
	patch, err := in.toPatch()
	if err != nil {
		return nil, err
	}

	t, err := s.store.UpdateTask(ctx, ownerID, id, patch, s.now().UTC())
	if errors.Is(err, models.ErrNotFound) {
		return nil, errTaskNotFound
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to update task", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	err := s.store.DeleteTask(ctx, ownerID, id)
	if errors.Is(err, models.ErrNotFound) {
		return errTaskNotFound
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to delete task", err)
	}
	return nil
}
