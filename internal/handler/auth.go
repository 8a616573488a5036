package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/view"
)

const invalidCredentials = "Invalid email or password."

// AuthHandler handles signup, login and logout for both the JSON API and
// the server-rendered forms.
type AuthHandler struct {
	errorResponder
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure, development bool) *AuthHandler {
	return &AuthHandler{
		errorResponder: errorResponder{development: development},
		auth:           auth,
		cookieSecure:   cookieSecure,
	}
}

// HandleSignup processes a JSON registration request.
// POST /api/auth/signup
// Request:  {"name":"...","email":"...","password":"..."}
// Response: 201 {"id","name","email","role","createdAt"}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.fail(w, "register user", err, "User not found")
		return
	}

	writeJSON(w, http.StatusCreated, toSignupDTO(user))
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"user": {...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		h.fail(w, "login user", err, "")
		return
	}

	setAuthCookie(w, token, h.auth.SessionMaxAge(), h.cookieSecure)
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

// HandleLogout clears the auth cookie.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, h.cookieSecure)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession returns the current session, or an empty object when
// signed out.
// GET /api/auth/session
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toSessionUserDTO(session),
	})
}

// HandleSignInPage renders the sign-in form.
func (h *AuthHandler) HandleSignInPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.SignInPage(r.URL.Query().Get("callbackUrl"), "", ""))
}

// HandleSignIn processes the sign-in form and redirects to the callback URL.
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderPage(w, r, http.StatusBadRequest, view.SignInPage("", "", "Invalid form submission."))
		return
	}
	email := r.FormValue("email")
	callback := r.FormValue("callbackUrl")

	token, _, err := h.auth.Login(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthorized) {
			slog.Error("login user", "error", err)
		}
		renderPage(w, r, http.StatusUnauthorized, view.SignInPage(callback, email, invalidCredentials))
		return
	}

	setAuthCookie(w, token, h.auth.SessionMaxAge(), h.cookieSecure)
	http.Redirect(w, r, safeCallback(r, callback), http.StatusSeeOther)
}

// HandleSignUpPage renders the registration form.
func (h *AuthHandler) HandleSignUpPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.SignUpPage("", "", "", nil))
}

// HandleSignUp processes the registration form. On success the user is
// sent to the sign-in page.
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderPage(w, r, http.StatusBadRequest, view.SignUpPage("", "", "Invalid form submission.", nil))
		return
	}
	name := r.FormValue("name")
	email := r.FormValue("email")

	_, err := h.auth.Register(r.Context(), name, email, r.FormValue("password"))
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			renderPage(w, r, http.StatusBadRequest, view.SignUpPage(name, email, "", verr.Fields))
		case errors.Is(err, domain.ErrDuplicateEmail):
			renderPage(w, r, http.StatusBadRequest, view.SignUpPage(name, email, "User with this email already exists", nil))
		case errors.Is(err, domain.ErrInvalidInput):
			renderPage(w, r, http.StatusBadRequest, view.SignUpPage(name, email, inputMessage(err), nil))
		default:
			slog.Error("register user", "error", err)
			renderPage(w, r, http.StatusInternalServerError, view.SignUpPage(name, email, "An unexpected error occurred. Please try again.", nil))
		}
		return
	}

	http.Redirect(w, r, "/auth/signin", http.StatusSeeOther)
}

// HandleSignOut clears the auth cookie and returns home.
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, h.cookieSecure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleAuthError explains an authentication failure.
func (h *AuthHandler) HandleAuthError(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	renderPage(w, r, http.StatusOK, view.AuthErrorPage(session, r.URL.Query().Get("error")))
}
