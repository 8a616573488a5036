package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/handler"
	"github.com/msomdec/inkwell/internal/repository/sqlite"
	"github.com/msomdec/inkwell/internal/service"
)

const (
	testJWTSecret = "test-secret-for-handler-tests-0123456789"
	testPassword  = "password123"
)

type testEnv struct {
	srv   *httptest.Server
	db    *sqlite.DB
	auth  *service.AuthService
	posts *service.PostService
	users *service.UserService
}

func newTestServices(t *testing.T) (handler.Services, *sqlite.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return handler.Services{
		Auth:    service.NewAuthService(db.Users(), testJWTSecret, 4, time.Hour),
		Posts:   service.NewPostService(db.Posts()),
		Users:   service.NewUserService(db.Users()),
		Uploads: service.NewUploadService(db.FileStore()),
		Store:   db,
	}, db
}

func defaultOptions() handler.Options {
	return handler.Options{
		CORSAllowedOrigins: []string{"*"},
		ProtectedPaths:     []string{"/admin", "/profile"},
	}
}

func newTestEnvWithOptions(t *testing.T, opts handler.Options) *testEnv {
	t.Helper()
	svc, db := newTestServices(t)
	srv := httptest.NewServer(handler.NewRouter(svc, opts))
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, db: db, auth: svc.Auth, posts: svc.Posts, users: svc.Users}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, defaultOptions())
}

// newClient returns a client with a cookie jar that does not follow
// redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// createUser registers a user and returns a session cookie for them.
func (e *testEnv) createUser(t *testing.T, name, email string, role domain.Role) (*domain.User, *http.Cookie) {
	t.Helper()
	ctx := context.Background()
	user, err := e.auth.Register(ctx, name, email, testPassword)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if role != domain.RoleUser {
		if user, err = e.users.SetRole(ctx, email, role); err != nil {
			t.Fatalf("SetRole: %v", err)
		}
	}
	token, _, err := e.auth.Login(ctx, email, testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return user, &http.Cookie{Name: "auth_token", Value: token}
}

// doJSON sends body as JSON and returns the response with its body read.
func (e *testEnv) doJSON(t *testing.T, method, path string, body any, cookie *http.Cookie) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := newClient(t).Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestRequireAuth(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	if _, err := svc.Auth.Register(ctx, "Valid User", "valid@example.com", testPassword); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Auth.Login(ctx, "valid@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var gotName string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := handler.SessionFromContext(r.Context()); s != nil {
			gotName = s.Name
		}
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RequireAuth(svc.Auth, inner)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{"valid token", &http.Cookie{Name: "auth_token", Value: token}, http.StatusOK},
		{"invalid token", &http.Cookie{Name: "auth_token", Value: "garbage"}, http.StatusUnauthorized},
		{"no cookie", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotName = ""
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && gotName != "Valid User" {
				t.Fatalf("expected session name in context, got %q", gotName)
			}
			if tt.want == http.StatusUnauthorized && w.Body.String() != "{\"error\":\"Unauthorized\"}\n" {
				t.Fatalf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestOptionalAuth_NoCookie(t *testing.T) {
	svc, _ := newTestServices(t)

	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if handler.SessionFromContext(r.Context()) != nil {
			t.Error("expected no session")
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "bad"})
	handler.OptionalAuth(svc.Auth, inner).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("expected inner handler to run")
	}
}

func TestRateLimit(t *testing.T) {
	tb := service.PerMinute(2)
	t.Cleanup(tb.Stop)

	h := handler.RateLimit(tb, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 200 429], got %v", codes)
	}

	// A different client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected other client allowed, got %d", w.Code)
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	h := handler.RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", w.Code)
	}
}
