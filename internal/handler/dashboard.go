package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/view"
	datastar "github.com/starfederation/datastar-go/datastar"
)

const adminPageSize = 20

// accessDenied is where signed-in users without the required role land.
const accessDenied = "/auth/error?error=AccessDenied"

// AdminHandler handles the admin dashboard and the compose page.
type AdminHandler struct {
	posts *service.PostService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(posts *service.PostService) *AdminHandler {
	return &AdminHandler{posts: posts}
}

// HandleDashboard renders every post, drafts included, for admins.
// GET /admin
func (h *AdminHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if !session.IsAdmin() {
		http.Redirect(w, r, accessDenied, http.StatusFound)
		return
	}

	page := service.ClampPage(queryInt(r.URL.Query().Get("page")))
	params := service.ListParams{Page: page, Limit: adminPageSize, Status: service.StatusAll}

	posts, err := h.posts.List(r.Context(), params)
	if err != nil {
		pageError(w, r, "list posts for admin", err)
		return
	}
	total, err := h.posts.Count(r.Context(), params)
	if err != nil {
		pageError(w, r, "count posts for admin", err)
		return
	}

	renderPage(w, r, http.StatusOK, view.AdminPage(session, posts, total, page, total > page*adminPageSize))
}

// HandleDeletePost deletes a post and removes its row via SSE.
// DELETE /admin/posts/{id}
func (h *AdminHandler) HandleDeletePost(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if !session.IsAdmin() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.posts.Delete(r.Context(), session, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("delete post", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	total, err := h.posts.Count(r.Context(), service.ListParams{Status: service.StatusAll})
	if err != nil {
		slog.Error("count posts after delete", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.RemoveElementByID(view.AdminPostRowID(id))
	sse.PatchElementTempl(
		view.AdminPostCount(total),
		datastar.WithSelectorID("post-count"),
		datastar.WithModeInner(),
	)
}

// HandleCompose renders the editor. With ?edit=<id> it loads that post,
// which only its owner or an admin may edit.
// GET /admin/compose
func (h *AdminHandler) HandleCompose(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/auth/signin", http.StatusFound)
		return
	}

	id := r.URL.Query().Get("edit")
	if id == "" {
		renderPage(w, r, http.StatusOK, view.ComposePage(session, nil))
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		pageError(w, r, "get post for edit", err)
		return
	}
	if !session.CanEdit(post.UserID) {
		http.Redirect(w, r, accessDenied, http.StatusFound)
		return
	}
	renderPage(w, r, http.StatusOK, view.ComposePage(session, post))
}
