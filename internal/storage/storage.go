package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hongminglow/taskboard-be/internal/models"
)

// ErrNotFound indicates a record does not exist, or is not visible to the caller.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore persists user identities and profile fields.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	// UpdateProfile applies the set fields of patch and returns the stored user.
	UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (models.User, error)
}

// TaskStore persists tasks. Every read and write is scoped to the owning user;
// a task owned by someone else behaves exactly like a missing one.
type TaskStore interface {
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	// ListTasks returns the owner's tasks matching filter, newest first.
	ListTasks(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]models.Task, error)
	// UpdateTask applies patch in a single write conditioned on id and owner.
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch models.TaskPatch) (models.Task, error)
	// DeleteTask removes the task in a single write conditioned on id and owner.
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
	TaskStats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error)
}
