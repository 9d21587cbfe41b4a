// Package memory keeps users and tasks in process memory. It backs the test
// suites and STORAGE_DRIVER=memory for local runs; nothing survives a restart.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.TaskStore = (*Store)(nil)
)

type taskRecord struct {
	task models.Task
	seq  uint64
}

// Store is a mutex-guarded in-memory implementation of both stores.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	seq     uint64
	users   map[uuid.UUID]models.User
	emails  map[string]uuid.UUID
	tasks   map[uuid.UUID]*taskRecord
	byOwner map[uuid.UUID]map[uuid.UUID]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:     func() time.Time { return time.Now().UTC() },
		users:   make(map[uuid.UUID]models.User),
		emails:  make(map[string]uuid.UUID),
		tasks:   make(map[uuid.UUID]*taskRecord),
		byOwner: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Close is a no-op kept for parity with the postgres store.
func (s *Store) Close() {}

// CreateUser inserts a user, rejecting duplicate emails.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := s.emails[key]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, taken := s.users[user.ID]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Skills = cloneSkills(user.Skills)

	s.users[user.ID] = user
	s.emails[key] = user.ID
	return copyUser(user), nil
}

// FindByID fetches a user by id.
func (s *Store) FindByID(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return copyUser(user), nil
}

// FindByEmail fetches a user by email, ignoring case.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return copyUser(s.users[id]), nil
}

// UpdateProfile overwrites the set fields of patch.
func (s *Store) UpdateProfile(_ context.Context, id uuid.UUID, patch models.ProfilePatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if name, ok := patch.Name.Get(); ok {
		user.Name = name
	}
	if bio, ok := patch.Bio.Get(); ok {
		user.Bio = bio
	}
	if skills, ok := patch.Skills.Get(); ok {
		user.Skills = cloneSkills(skills)
	}
	user.UpdatedAt = s.now()
	s.users[id] = user
	return copyUser(user), nil
}

// CreateTask stores a task for its owner.
func (s *Store) CreateTask(_ context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[task.UserID]; !ok {
		return models.Task{}, storage.ErrNotFound
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if _, taken := s.tasks[task.ID]; taken {
		return models.Task{}, storage.ErrAlreadyExists
	}
	now := s.now()
	task.CreatedAt, task.UpdatedAt = now, now

	s.seq++
	s.tasks[task.ID] = &taskRecord{task: task, seq: s.seq}
	owned := s.byOwner[task.UserID]
	if owned == nil {
		owned = make(map[uuid.UUID]struct{})
		s.byOwner[task.UserID] = owned
	}
	owned[task.ID] = struct{}{}
	return task, nil
}

// ListTasks returns the owner's matching tasks, newest first.
func (s *Store) ListTasks(_ context.Context, userID uuid.UUID, filter models.TaskFilter) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*taskRecord, 0, len(s.byOwner[userID]))
	for id := range s.byOwner[userID] {
		rec := s.tasks[id]
		if filter.Matches(rec.task) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]models.Task, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.task)
	}
	return out, nil
}

// UpdateTask applies patch when the task exists and belongs to userID.
func (s *Store) UpdateTask(_ context.Context, userID, taskID uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.owned(userID, taskID)
	if !ok {
		return models.Task{}, storage.ErrNotFound
	}
	if title, ok := patch.Title.Get(); ok {
		rec.task.Title = title
	}
	if description, ok := patch.Description.Get(); ok {
		rec.task.Description = description
	}
	if status, ok := patch.Status.Get(); ok {
		rec.task.Status = status
	}
	rec.task.UpdatedAt = s.now()
	return rec.task, nil
}

// DeleteTask removes the task when it exists and belongs to userID.
func (s *Store) DeleteTask(_ context.Context, userID, taskID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owned(userID, taskID); !ok {
		return storage.ErrNotFound
	}
	delete(s.tasks, taskID)
	delete(s.byOwner[userID], taskID)
	return nil
}

// TaskStats counts the owner's tasks by status.
func (s *Store) TaskStats(_ context.Context, userID uuid.UUID) (models.TaskStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.TaskStats
	for id := range s.byOwner[userID] {
		stats.Total++
		switch s.tasks[id].task.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusCompleted:
			stats.Completed++
		}
	}
	return stats, nil
}

// owned must be called with s.mu held.
func (s *Store) owned(userID, taskID uuid.UUID) (*taskRecord, bool) {
	rec, ok := s.tasks[taskID]
	if !ok || rec.task.UserID != userID {
		return nil, false
	}
	return rec, true
}

func copyUser(u models.User) models.User {
	u.Skills = cloneSkills(u.Skills)
	return u
}

func cloneSkills(skills []string) []string {
	if skills == nil {
		return []string{}
	}
	return slices.Clone(skills)
}
