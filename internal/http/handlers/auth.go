package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/taskboard-be/internal/http/respond"
	"github.com/hongminglow/taskboard-be/internal/models/dto"
	"github.com/hongminglow/taskboard-be/internal/service"
)

// AuthHandler owns the register and login endpoints.
type AuthHandler struct {
	accounts *service.Accounts
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(accounts *service.Accounts) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register attaches auth routes under the current router.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user created successfully", created)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", resp)
}
