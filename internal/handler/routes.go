package handler

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/msomdec/inkwell/internal/service"
)

// Services are the dependencies the router dispatches to.
type Services struct {
	Auth    *service.AuthService
	Posts   *service.PostService
	Users   *service.UserService
	Uploads *service.UploadService
	Store   Pinger
}

// Options tune the router.
type Options struct {
	Development        bool
	CookieSecure       bool
	CORSAllowedOrigins []string
	ProtectedPaths     []string
	// TrustProxy takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable it only behind a proxy that sets those headers.
	TrustProxy bool
	// AuthLimiter throttles sign-in and sign-up per client IP. Nil disables
	// rate limiting.
	AuthLimiter *service.TokenBucket
}

// NewRouter wires every page, API and asset route.
func NewRouter(svc Services, opts Options) http.Handler {
	auth := NewAuthHandler(svc.Auth, opts.CookieSecure, opts.Development)
	posts := NewPostHandler(svc.Posts, opts.Development)
	users := NewUserHandler(svc.Users, opts.Development)
	uploads := NewUploadHandler(svc.Uploads, opts.Development)
	pages := NewPageHandler(svc.Auth, svc.Posts, svc.Users, opts.CookieSecure)
	admin := NewAdminHandler(svc.Posts)
	health := NewHealthHandler(svc.Store)

	requireAuth := func(next http.Handler) http.Handler { return RequireAuth(svc.Auth, next) }
	optionalAuth := func(next http.Handler) http.Handler { return OptionalAuth(svc.Auth, next) }
	rateLimit := func(next http.Handler) http.Handler {
		if opts.AuthLimiter == nil {
			return next
		}
		return RateLimit(opts.AuthLimiter, next)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(NewGate(svc.Auth, opts.ProtectedPaths).Middleware)

	r.NotFound(pages.HandleNotFound)

	r.Get("/healthz", health.HandleHealthz)
	r.Get("/uploads/{id}", uploads.HandleServe)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: !slices.Contains(opts.CORSAllowedOrigins, "*"),
			MaxAge:           300,
		}).Handler)

		r.With(rateLimit).Post("/auth/signup", auth.HandleSignup)
		r.With(rateLimit).Post("/auth/login", auth.HandleLogin)
		r.Post("/auth/logout", auth.HandleLogout)
		r.With(optionalAuth).Get("/auth/session", auth.HandleSession)

		r.With(optionalAuth).Get("/posts", posts.HandleList)
		r.With(optionalAuth).Get("/posts/slug/{slug}", posts.HandleGetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/posts", posts.HandleCreate)
			r.Put("/posts/{id}", posts.HandleUpdate)
			r.Delete("/posts/{id}", posts.HandleDelete)
			r.Get("/users/{id}", users.HandleGet)
			r.Put("/users/{id}", users.HandleUpdate)
			r.Post("/upload", uploads.HandleUpload)
		})
	})

	// Pages. The gate has already resolved the session and guarded the
	// protected prefixes.
	r.Get("/", pages.HandleHome)
	r.Get("/blog", pages.HandleBlog)
	r.Get("/blog/{slug}", pages.HandlePost)
	r.Get("/explore", pages.HandleExplore)
	r.Get("/about", pages.HandleAbout)

	r.Get("/auth/signin", auth.HandleSignInPage)
	r.With(rateLimit).Post("/auth/signin", auth.HandleSignIn)
	r.Get("/auth/signup", auth.HandleSignUpPage)
	r.With(rateLimit).Post("/auth/signup", auth.HandleSignUp)
	r.Post("/auth/signout", auth.HandleSignOut)
	r.Get("/auth/error", auth.HandleAuthError)

	r.Get("/admin", admin.HandleDashboard)
	r.Get("/admin/compose", admin.HandleCompose)
	r.Delete("/admin/posts/{id}", admin.HandleDeletePost)

	r.Get("/profile", pages.HandleProfile)
	r.Get("/profile/edit", pages.HandleProfileEditPage)
	r.Post("/profile/edit", pages.HandleProfileEdit)

	return r
}
