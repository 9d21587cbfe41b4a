package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/taskboard-be/internal/http/respond"
	"github.com/hongminglow/taskboard-be/internal/middleware"
	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/service"
)

// TaskHandler exposes the caller's tasks.
type TaskHandler struct {
	tasks *service.Tasks
}

func NewTaskHandler(tasks *service.Tasks) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Register attaches task routes. The router must already authenticate.
func (h *TaskHandler) Register(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Get("/stats", h.handleStats)
	r.Put("/{id}", h.handleUpdate)
	r.Patch("/{id}", h.handleUpdate)
	r.Delete("/{id}", h.handleDelete)
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := models.TaskFilter{Search: q.Get("search")}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		filter.Status = models.Some(models.TaskStatus(strings.ToLower(raw)))
	}

	tasks, err := h.tasks.List(r.Context(), userID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "tasks", tasks)
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var draft models.TaskDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	task, err := h.tasks.Create(r.Context(), userID, draft)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "task created", task)
}

func (h *TaskHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	stats, err := h.tasks.Stats(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "task stats", stats)
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}
	var patch models.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	task, err := h.tasks.Update(r.Context(), userID, taskID, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "task updated", task)
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDParam(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "task deleted", nil)
}

func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, respond.KindUnauthenticated, "authentication required")
	}
	return id, ok
}

// taskIDParam treats an unparsable id like a missing task.
func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, service.ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}
