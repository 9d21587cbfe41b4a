package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/taskboard-be/internal/http/respond"
	"github.com/hongminglow/taskboard-be/internal/models"
	"github.com/hongminglow/taskboard-be/internal/service"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	profiles *service.Profiles
}

func NewProfileHandler(profiles *service.Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Register attaches profile routes. The router must already authenticate.
func (h *ProfileHandler) Register(r chi.Router) {
	r.Get("/", h.handleGet)
	r.Put("/", h.handleUpdate)
}

func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	user, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "profile", user)
}

func (h *ProfileHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	var patch models.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	user, err := h.profiles.Update(r.Context(), userID, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "profile updated", user)
}
