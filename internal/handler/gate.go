package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/msomdec/inkwell/internal/service"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' 'unsafe-eval' https://cdn.jsdelivr.net; " +
	"style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: blob: https:; " +
	"font-src 'self' data:; " +
	"connect-src 'self' https:;"

// authOnlyPaths are pages that make no sense for a signed-in user.
var authOnlyPaths = map[string]bool{
	"/auth/signin": true,
	"/auth/signup": true,
}

// Gate guards page requests. It sets the security headers, redirects
// anonymous visitors of protected pages to the sign-in page, and keeps
// signed-in users away from the sign-in and sign-up pages. API requests pass
// through untouched; API handlers do their own checks.
type Gate struct {
	auth      *service.AuthService
	protected []string
}

// NewGate creates a Gate protecting the given path prefixes.
func NewGate(auth *service.AuthService, protected []string) *Gate {
	return &Gate{auth: auth, protected: protected}
}

func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		setSecurityHeaders(w.Header())

		session, _ := sessionFromRequest(r, g.auth)

		switch {
		case session == nil && g.isProtected(path):
			target := "/auth/signin?callbackUrl=" + url.QueryEscape(requestURL(r))
			http.Redirect(w, r, target, http.StatusFound)
			return
		case session != nil && authOnlyPaths[path]:
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}

		if session != nil {
			r = withSession(r, session)
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) isProtected(path string) bool {
	for _, prefix := range g.protected {
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=(), browsing-topics=()")
}

// requestURL reconstructs the absolute URL the client asked for.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// safeCallback returns the local path to continue to after sign-in. Only
// same-host URLs are honored so the form cannot be used as an open redirect.
func safeCallback(r *http.Request, raw string) string {
	if raw == "" {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "/"
	}
	if u.IsAbs() || u.Host != "" {
		if u.Host != r.Host || (u.Scheme != "http" && u.Scheme != "https") {
			return "/"
		}
		return u.RequestURI()
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	return raw
}
