package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
	"github.com/msomdec/inkwell/internal/view"
)

const homePostCount = 6

// PageHandler renders the public and profile pages.
type PageHandler struct {
	auth         *service.AuthService
	posts        *service.PostService
	users        *service.UserService
	cookieSecure bool
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(auth *service.AuthService, posts *service.PostService, users *service.UserService, cookieSecure bool) *PageHandler {
	return &PageHandler{auth: auth, posts: posts, users: users, cookieSecure: cookieSecure}
}

// HandleHome renders the latest published posts.
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), service.ListParams{Limit: homePostCount})
	if err != nil {
		pageError(w, r, "list posts for home", err)
		return
	}
	renderPage(w, r, http.StatusOK, view.HomePage(SessionFromContext(r.Context()), posts))
}

// HandleBlog renders one page of published posts.
func (h *PageHandler) HandleBlog(w http.ResponseWriter, r *http.Request) {
	page := service.ClampPage(queryInt(r.URL.Query().Get("page")))
	params := service.ListParams{Page: page}

	posts, err := h.posts.List(r.Context(), params)
	if err != nil {
		pageError(w, r, "list posts for blog", err)
		return
	}
	total, err := h.posts.Count(r.Context(), params)
	if err != nil {
		pageError(w, r, "count posts for blog", err)
		return
	}

	hasNext := total > page*service.DefaultPageSize
	renderPage(w, r, http.StatusOK, view.BlogListPage(SessionFromContext(r.Context()), posts, page, hasNext))
}

// HandlePost renders a single post. Drafts are shown only to their owner
// and to admins.
func (h *PageHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	post, err := h.posts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		pageError(w, r, "get post", err)
		return
	}
	if post.Status != domain.PostStatusPublished && !session.CanEdit(post.UserID) {
		pageError(w, r, "get post", domain.ErrNotFound)
		return
	}
	renderPage(w, r, http.StatusOK, view.PostPage(session, post, session.CanEdit(post.UserID)))
}

// HandleExplore lists tags and, when one is selected, its posts.
func (h *PageHandler) HandleExplore(w http.ResponseWriter, r *http.Request) {
	tag := strings.TrimSpace(r.URL.Query().Get("tag"))

	tags, err := h.posts.Tags(r.Context())
	if err != nil {
		pageError(w, r, "list tags", err)
		return
	}
	posts, err := h.posts.List(r.Context(), service.ListParams{Category: tag, Limit: service.MaxPageSize})
	if err != nil {
		pageError(w, r, "list posts for explore", err)
		return
	}
	renderPage(w, r, http.StatusOK, view.ExplorePage(SessionFromContext(r.Context()), tags, tag, posts))
}

// HandleAbout renders the static about page.
func (h *PageHandler) HandleAbout(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, http.StatusOK, view.AboutPage(SessionFromContext(r.Context())))
}

// HandleProfile renders the signed-in user's profile with all their posts.
func (h *PageHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/auth/signin", http.StatusFound)
		return
	}

	user, err := h.users.Get(r.Context(), session.UserID)
	if err != nil {
		pageError(w, r, "get profile", err)
		return
	}
	posts, err := h.posts.List(r.Context(), service.ListParams{
		UserID: session.UserID,
		Status: service.StatusAll,
		Limit:  service.MaxPageSize,
	})
	if err != nil {
		pageError(w, r, "list profile posts", err)
		return
	}
	renderPage(w, r, http.StatusOK, view.ProfilePage(session, user, posts))
}

// HandleProfileEditPage renders the profile form.
func (h *PageHandler) HandleProfileEditPage(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/auth/signin", http.StatusFound)
		return
	}

	user, err := h.users.Get(r.Context(), session.UserID)
	if err != nil {
		pageError(w, r, "get profile", err)
		return
	}
	renderPage(w, r, http.StatusOK, view.ProfileEditPage(session, user, "", nil))
}

// HandleProfileEdit saves the profile form. The session cookie is
// reissued so the navigation shows the new name.
func (h *PageHandler) HandleProfileEdit(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		http.Redirect(w, r, "/auth/signin", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	in := service.ProfileInput{
		Name:     r.PostForm.Get("name"),
		Bio:      r.PostForm.Get("bio"),
		Location: r.PostForm.Get("location"),
		Website:  r.PostForm.Get("website"),
		Twitter:  r.PostForm.Get("twitter"),
		GitHub:   r.PostForm.Get("github"),
	}
	if r.PostForm.Has("image") {
		image := r.PostForm.Get("image")
		in.Image = &image
	}

	user, err := h.users.UpdateProfile(r.Context(), session, session.UserID, in)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			current, getErr := h.users.Get(r.Context(), session.UserID)
			if getErr != nil {
				pageError(w, r, "get profile", getErr)
				return
			}
			renderPage(w, r, http.StatusBadRequest, view.ProfileEditPage(session, formProfile(current, in), "Please fix the errors below.", verr.Fields))
			return
		}
		pageError(w, r, "update profile", err)
		return
	}

	if token, err := h.auth.IssueToken(user); err != nil {
		slog.Error("reissue session token", "error", err)
	} else {
		setAuthCookie(w, token, h.auth.SessionMaxAge(), h.cookieSecure)
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// HandleNotFound renders a 404 page, or a JSON error under /api.
func (h *PageHandler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	pageError(w, r, "", domain.ErrNotFound)
}

// formProfile overlays submitted values on the stored user so a rejected
// form keeps what was typed.
func formProfile(u *domain.User, in service.ProfileInput) *domain.User {
	cp := *u
	cp.Name = in.Name
	cp.Bio = in.Bio
	cp.Location = in.Location
	cp.Website = in.Website
	cp.Twitter = in.Twitter
	cp.GitHub = in.GitHub
	if in.Image != nil {
		cp.Image = *in.Image
	}
	return &cp
}

func renderPage(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}

// pageError renders the error page for err.
func pageError(w http.ResponseWriter, r *http.Request, action string, err error) {
	session := SessionFromContext(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		renderPage(w, r, http.StatusNotFound, view.ErrorPage(session, http.StatusNotFound, "Not Found",
			"The page you are looking for does not exist."))
	case errors.Is(err, domain.ErrInvalidInput):
		renderPage(w, r, http.StatusBadRequest, view.ErrorPage(session, http.StatusBadRequest, "Bad Request", inputMessage(err)))
	default:
		slog.Error(action, "error", err)
		renderPage(w, r, http.StatusInternalServerError, view.ErrorPage(session, http.StatusInternalServerError,
			"Internal Server Error", "Something went wrong. Please try again."))
	}
}
