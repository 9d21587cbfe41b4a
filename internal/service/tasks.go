package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

// Tasks implements the owner-scoped task operations.
type Tasks struct {
	tasks storage.TaskStore
	log   *zap.SugaredLogger
}

func NewTasks(tasks storage.TaskStore, log *zap.SugaredLogger) *Tasks {
	return &Tasks{tasks: tasks, log: log.Named("tasks")}
}

// Create stores a new task for userID. Status defaults to pending.
func (s *Tasks) Create(ctx context.Context, userID uuid.UUID, draft models.TaskDraft) (models.Task, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return models.Task{}, validationf("title is required")
	}
	status := models.StatusPending
	if st, ok := draft.Status.Get(); ok {
		if !st.Valid() {
			return models.Task{}, validationf("status must be %q or %q", models.StatusPending, models.StatusCompleted)
		}
		status = st
	}

	task, err := s.tasks.CreateTask(ctx, models.Task{
		UserID:      userID,
		Title:       title,
		Description: draft.Description,
		Status:      status,
	})
	if err != nil {
		return models.Task{}, s.mapErr("create task", userID, err)
	}
	s.log.Debugw("task created", "user_id", userID, "task_id", task.ID)
	return task, nil
}

// List returns the caller's tasks matching filter, newest first.
func (s *Tasks) List(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]models.Task, error) {
	if st, ok := filter.Status.Get(); ok && !st.Valid() {
		return nil, validationf("status must be %q or %q", models.StatusPending, models.StatusCompleted)
	}
	filter.Search = strings.TrimSpace(filter.Search)

	tasks, err := s.tasks.ListTasks(ctx, userID, filter)
	if err != nil {
		return nil, s.mapErr("list tasks", userID, err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Update applies the set fields of patch to a task the caller owns.
func (s *Tasks) Update(ctx context.Context, userID, taskID uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	if title, ok := patch.Title.Get(); ok {
		title = strings.TrimSpace(title)
		if title == "" {
			return models.Task{}, validationf("title must not be empty")
		}
		patch.Title = models.Some(title)
	}
	if st, ok := patch.Status.Get(); ok && !st.Valid() {
		return models.Task{}, validationf("status must be %q or %q", models.StatusPending, models.StatusCompleted)
	}

	task, err := s.tasks.UpdateTask(ctx, userID, taskID, patch)
	if err != nil {
		return models.Task{}, s.mapErr("update task", userID, err)
	}
	return task, nil
}

// Delete removes a task the caller owns. Repeating it reports ErrNotFound.
func (s *Tasks) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.DeleteTask(ctx, userID, taskID); err != nil {
		return s.mapErr("delete task", userID, err)
	}
	s.log.Debugw("task deleted", "user_id", userID, "task_id", taskID)
	return nil
}

// Stats counts the caller's tasks by status.
func (s *Tasks) Stats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error) {
	stats, err := s.tasks.TaskStats(ctx, userID)
	if err != nil {
		return models.TaskStats{}, s.mapErr("task stats", userID, err)
	}
	return stats, nil
}

func (s *Tasks) mapErr(op string, userID uuid.UUID, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	s.log.Errorw(op, "user_id", userID, "error", err)
	return storageErr(op, err)
}
