package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/msomdec/inkwell/internal/service"
)

const userNotFound = "User not found"

// UserHandler serves the profile JSON API.
type UserHandler struct {
	errorResponder
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, development bool) *UserHandler {
	return &UserHandler{errorResponder: errorResponder{development: development}, users: users}
}

// HandleGet returns a user's profile.
// GET /api/users/{id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "get user", err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleUpdate edits the signed-in user's own profile.
// PUT /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.fail(w, "update profile", err, userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}
