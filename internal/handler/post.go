package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

const postNotFound = "Post not found"

// PostHandler serves the post JSON API.
type PostHandler struct {
	errorResponder
	posts *service.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts *service.PostService, development bool) *PostHandler {
	return &PostHandler{errorResponder: errorResponder{development: development}, posts: posts}
}

// HandleList returns a page of post summaries without content.
// GET /api/posts?page&limit&userId&status&category
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := service.ListParams{
		Page:     queryInt(q.Get("page")),
		Limit:    queryInt(q.Get("limit")),
		UserID:   q.Get("userId"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
	}

	// Drafts are visible to their owner and to admins only.
	if params.Status != "" && params.Status != string(domain.PostStatusPublished) {
		session := SessionFromContext(r.Context())
		if !session.IsAdmin() && (session == nil || params.UserID != session.UserID) {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
	}

	posts, err := h.posts.List(r.Context(), params)
	if err != nil {
		h.fail(w, "list posts", err, postNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPostSummaryDTOs(posts))
}

// HandleCreate creates a post owned by the signed-in user.
// POST /api/posts
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	post, err := h.posts.Create(r.Context(), SessionFromContext(r.Context()), req.input())
	if err != nil {
		h.fail(w, "create post", err, postNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, toPostDTO(post))
}

// HandleGetBySlug returns a single post.
// GET /api/posts/slug/{slug}
func (h *PostHandler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, "get post by slug", err, postNotFound)
		return
	}
	if post.Status != domain.PostStatusPublished && !SessionFromContext(r.Context()).CanEdit(post.UserID) {
		writeError(w, http.StatusNotFound, postNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post))
}

// HandleUpdate edits a post. Owner or admin only.
// PUT /api/posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	post, err := h.posts.Update(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		h.fail(w, "update post", err, postNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toPostDTO(post))
}

// HandleDelete removes a post. Admin only.
// DELETE /api/posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Delete(r.Context(), SessionFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete post", err, postNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// queryInt parses a positive integer query value. Anything else yields 0,
// which the services treat as "use the default".
func queryInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
