package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the closed set of states a task can be in.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggle returns the opposite status. Unknown values toggle to completed.
func (s TaskStatus) Toggle() TaskStatus {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// ParseTaskStatus converts raw input into a TaskStatus.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown task status %q", raw)
	}
	return s, nil
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskDraft is the input for creating a task.
type TaskDraft struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	Status      Optional[TaskStatus] `json:"status,omitzero"`
}

// TaskPatch carries the mutable task fields. Owner and id are not part of it.
type TaskPatch struct {
	Title       Optional[string]     `json:"title,omitzero"`
	Description Optional[string]     `json:"description,omitzero"`
	Status      Optional[TaskStatus] `json:"status,omitzero"`
}

// TaskFilter narrows a scoped listing. Both conditions must hold.
type TaskFilter struct {
	Search string
	Status Optional[TaskStatus]
}

// Matches reports whether t satisfies the filter.
func (f TaskFilter) Matches(t Task) bool {
	if status, ok := f.Status.Get(); ok && t.Status != status {
		return false
	}
	search := strings.TrimSpace(f.Search)
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(search))
}

// TaskStats counts a user's tasks by status.
type TaskStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
