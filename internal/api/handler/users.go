package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dickerchen-app/dickerchen/internal/api/respond"
)

// ListUsers returns all registered users.
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} activity.UserRow
// @Router /api/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to list users")
		return
	}
	respond.JSON(w, http.StatusOK, users)
}

type createUserRequest struct {
	Name string `json:"name"`
}

// CreateUser registers a new user.
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param request body createUserRequest true "User name"
// @Success 200 {object} activity.UserRow
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || name == "undefined" || name == "null" {
		respond.Error(w, http.StatusBadRequest, "INVALID_NAME", "Valid name is required")
		return
	}

	user, err := h.repo.CreateUser(r.Context(), name)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "DB_ERROR", "Failed to create user")
		return
	}
	respond.JSON(w, http.StatusOK, user)
}
