package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
)

// API is a typed client for the taskboard HTTP API.
type API struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewAPI returns a client for baseURL. A nil httpClient uses http.DefaultClient.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// WithToken returns a copy of the client that sends token as a bearer credential.
func (a *API) WithToken(token string) *API {
	c := *a
	c.token = token
	return &c
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorKind string          `json:"errorKind"`
	Data      json.RawMessage `json:"data"`
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Kind: env.ErrorKind, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Health pings the server.
func (a *API) Health(ctx context.Context) error {
	return a.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (a *API) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	var user models.User
	err := a.do(ctx, http.MethodPost, "/api/auth/register", req, &user)
	return user, err
}

func (a *API) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	var resp dto.LoginResponse
	err := a.do(ctx, http.MethodPost, "/api/auth/login", req, &resp)
	return resp, err
}

func (a *API) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	err := a.do(ctx, http.MethodGet, "/api/profile", nil, &user)
	return user, err
}

func (a *API) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.User, error) {
	var user models.User
	err := a.do(ctx, http.MethodPut, "/api/profile", patch, &user)
	return user, err
}

// ListTasks fetches the caller's tasks. An unset status and blank search
// are left out of the query.
func (a *API) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	q := url.Values{}
	if s := strings.TrimSpace(filter.Search); s != "" {
		q.Set("search", s)
	}
	if st, ok := filter.Status.Get(); ok {
		q.Set("status", string(st))
	}
	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	tasks := []models.Task{}
	err := a.do(ctx, http.MethodGet, path, nil, &tasks)
	return tasks, err
}

func (a *API) CreateTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	var task models.Task
	err := a.do(ctx, http.MethodPost, "/api/tasks", draft, &task)
	return task, err
}

func (a *API) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := a.do(ctx, http.MethodPut, "/api/tasks/"+id.String(), patch, &task)
	return task, err
}

func (a *API) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return a.do(ctx, http.MethodDelete, "/api/tasks/"+id.String(), nil, nil)
}

func (a *API) TaskStats(ctx context.Context) (models.TaskStats, error) {
	var stats models.TaskStats
	err := a.do(ctx, http.MethodGet, "/api/tasks/stats", nil, &stats)
	return stats, err
}

// ToggleStatus flips the task between pending and completed and returns the
// server's copy.
func (a *API) ToggleStatus(ctx context.Context, task models.Task) (models.Task, error) {
	return a.UpdateTask(ctx, task.ID, models.TaskPatch{Status: models.Some(task.Status.Toggle())})
}

// RemoveTask deletes a task, treating an already-missing task as removed.
func (a *API) RemoveTask(ctx context.Context, id uuid.UUID) error {
	if err := a.DeleteTask(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
