package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/storage"
)

const taskColumns = `id, user_id, title, description, status, created_at, updated_at`

// CreateTask inserts a task. An unknown owner surfaces as storage.ErrNotFound.
func (s *Store) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	const query = `
		INSERT INTO tasks (id, user_id, title, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + taskColumns
	row := s.pool.QueryRow(ctx, query, task.ID, task.UserID, task.Title, task.Description, string(task.Status))
	created, err := scanTask(row)
	if err != nil {
		switch {
		case isCode(err, codeForeignKeyViolation):
			return models.Task{}, storage.ErrNotFound
		case isCode(err, codeUniqueViolation):
			return models.Task{}, storage.ErrAlreadyExists
		}
		return models.Task{}, err
	}
	return created, nil
}

// ListTasks returns the owner's tasks matching filter, newest first.
func (s *Store) ListTasks(ctx context.Context, userID uuid.UUID, filter models.TaskFilter) ([]models.Task, error) {
	var status *string
	if st, ok := filter.Status.Get(); ok {
		v := string(st)
		status = &v
	}
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
			AND ($2::text IS NULL OR status = $2::text)
			AND (btrim($3::text) = '' OR strpos(lower(title), lower(btrim($3::text))) > 0)
		ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query, userID, status, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies patch in a single statement filtered by id and owner.
func (s *Store) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	var status *string
	if st, ok := patch.Status.Get(); ok {
		v := string(st)
		status = &v
	}
	const query = `
		UPDATE tasks SET
			title = COALESCE($3::text, title),
			description = COALESCE($4::text, description),
			status = COALESCE($5::text, status),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	row := s.pool.QueryRow(ctx, query, taskID, userID, patch.Title.Ptr(), patch.Description.Ptr(), status)
	return scanTask(row)
}

// DeleteTask removes the task in a single statement filtered by id and owner.
func (s *Store) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// TaskStats counts the owner's tasks by status.
func (s *Store) TaskStats(ctx context.Context, userID uuid.UUID) (models.TaskStats, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM tasks
		WHERE user_id = $1`
	var stats models.TaskStats
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.Pending, &stats.Completed); err != nil {
		return models.TaskStats{}, err
	}
	return stats, nil
}

func scanTask(row pgx.Row) (models.Task, error) {
	var (
		task   models.Task
		status string
	)
	if err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &status, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, storage.ErrNotFound
		}
		return models.Task{}, err
	}
	task.Status = models.TaskStatus(status)
	return task, nil
}
