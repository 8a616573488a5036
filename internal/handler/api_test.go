package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/handler"
	"github.com/msomdec/inkwell/internal/service"
)

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func TestAPI_Signup(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.doJSON(t, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ada", "email": "Ada@Example.com", "password": "secret1",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	body := decode[map[string]any](t, data)
	if body["email"] != "ada@example.com" || body["role"] != "user" || body["id"] == "" {
		t.Fatalf("unexpected signup body %v", body)
	}
	if _, ok := body["password"]; ok {
		t.Fatal("signup response must not include the password")
	}

	stored, err := env.db.Users().GetByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Fatal("expected hashed password")
	}
}

func TestAPI_Signup_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Taken", "taken@example.com", domain.RoleUser)

	tests := []struct {
		name      string
		body      map[string]string
		wantError string
		wantField string
	}{
		{"duplicate email any case", map[string]string{"name": "X", "email": "TAKEN@example.com", "password": "secret1"}, "User with this email already exists", ""},
		{"missing fields", map[string]string{"email": "a@b.co"}, "Missing required fields", ""},
		{"short password", map[string]string{"name": "X", "email": "x@example.com", "password": "12345"}, "Validation failed", "password"},
		{"password over bcrypt limit", map[string]string{"name": "X", "email": "x@example.com", "password": strings.Repeat("a", 73)}, "Validation failed", "password"},
		{"bad email", map[string]string{"name": "X", "email": "nope", "password": "secret1"}, "Validation failed", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, data := env.doJSON(t, http.MethodPost, "/api/auth/signup", tt.body, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.StatusCode, data)
			}
			body := decode[struct {
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}](t, data)
			if body.Error != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, body.Error)
			}
			if tt.wantField != "" && body.Fields[tt.wantField] == "" {
				t.Fatalf("expected field error for %s, got %v", tt.wantField, body.Fields)
			}
		})
	}

	n := 0
	for _, email := range []string{"x@example.com", "a@b.co"} {
		if _, err := env.db.Users().GetByEmail(context.Background(), email); err == nil {
			n++
		}
	}
	if n != 0 {
		t.Fatalf("expected no users created by rejected signups, got %d", n)
	}
}

func TestAPI_LoginAndSession(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "Grace", "grace@example.com", domain.RoleUser)

	resp, data := env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "grace@example.com", "password": "wrong-password",
	}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(data), "Invalid email or password.") {
		t.Fatalf("expected generic message, got %s", data)
	}

	resp, _ = env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "GRACE@example.com", "password": testPassword,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly {
		t.Fatal("expected HttpOnly auth_token cookie")
	}

	_, data = env.doJSON(t, http.MethodGet, "/api/auth/session", nil, cookie)
	session := decode[map[string]map[string]string](t, data)
	if session["user"]["email"] != "grace@example.com" || session["user"]["role"] != "user" {
		t.Fatalf("unexpected session %v", session)
	}

	_, data = env.doJSON(t, http.MethodGet, "/api/auth/session", nil, nil)
	if strings.TrimSpace(string(data)) != "{}" {
		t.Fatalf("expected empty session, got %s", data)
	}

	resp, _ = env.doJSON(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestAPI_LoginRateLimited(t *testing.T) {
	limiter := service.PerMinute(2)
	t.Cleanup(limiter.Stop)
	opts := defaultOptions()
	opts.AuthLimiter = limiter
	env := newTestEnvWithOptions(t, opts)

	var last int
	for range 3 {
		resp, _ := env.doJSON(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.co", "password": "x"}, nil)
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third attempt, got %d", last)
	}
}

// loginFrom posts a failed login carrying the given X-Forwarded-For value.
func loginFrom(t *testing.T, env *testEnv, forwardedFor string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/auth/login",
		strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	resp, err := newClient(t).Do(req)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestAPI_LoginRateLimit_IgnoresForwardedForByDefault(t *testing.T) {
	limiter := service.PerMinute(2)
	t.Cleanup(limiter.Stop)
	opts := defaultOptions()
	opts.AuthLimiter = limiter
	env := newTestEnvWithOptions(t, opts)

	limited := 0
	for i := range 10 {
		if loginFrom(t, env, fmt.Sprintf("198.51.100.%d", i+1)) == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited != 8 {
		t.Fatalf("expected 8 of 10 rotated-header logins throttled, got %d", limited)
	}
}

func TestAPI_LoginRateLimit_TrustProxy(t *testing.T) {
	limiter := service.PerMinute(2)
	t.Cleanup(limiter.Stop)
	opts := defaultOptions()
	opts.AuthLimiter = limiter
	opts.TrustProxy = true
	env := newTestEnvWithOptions(t, opts)

	for i := range 3 {
		if code := loginFrom(t, env, fmt.Sprintf("198.51.100.%d", i+1)); code == http.StatusTooManyRequests {
			t.Fatalf("expected each forwarded client to get its own bucket, got 429 on attempt %d", i+1)
		}
	}
	for range 2 {
		loginFrom(t, env, "203.0.113.9")
	}
	if code := loginFrom(t, env, "203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a repeated forwarded client, got %d", code)
	}
}

func TestAPI_PostLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, writer := env.createUser(t, "Writer", "writer@example.com", domain.RoleUser)
	_, other := env.createUser(t, "Other", "other@example.com", domain.RoleUser)
	_, admin := env.createUser(t, "Admin", "admin@example.com", domain.RoleAdmin)

	input := map[string]any{
		"title":   "Hello, World!",
		"excerpt": "First post",
		"content": "<p>Hi there</p>",
		"tags":    "go, web, ",
	}

	resp, data := env.doJSON(t, http.MethodPost, "/api/posts", input, writer)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, data)
	}
	first := decode[handler.PostDTO](t, data)
	if first.Slug != "hello-world" || first.Status != "published" || first.Author != "Writer" {
		t.Fatalf("unexpected post %+v", first)
	}
	if len(first.Tags) != 2 || first.Tags[0] != "go" || first.Tags[1] != "web" {
		t.Fatalf("expected tags [go web], got %v", first.Tags)
	}

	_, data = env.doJSON(t, http.MethodPost, "/api/posts", input, writer)
	if second := decode[handler.PostDTO](t, data); second.Slug != "hello-world-1" {
		t.Fatalf("expected hello-world-1, got %s", second.Slug)
	}

	// List never includes content.
	resp, data = env.doJSON(t, http.MethodGet, "/api/posts", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", resp.StatusCode)
	}
	list := decode[[]map[string]any](t, data)
	if len(list) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(list))
	}
	for _, p := range list {
		if _, ok := p["content"]; ok {
			t.Fatal("list entries must not include content")
		}
	}
	if list[0]["slug"] != "hello-world-1" {
		t.Fatalf("expected newest first, got %v", list[0]["slug"])
	}

	resp, data = env.doJSON(t, http.MethodGet, "/api/posts/slug/hello-world", nil, nil)
	if resp.StatusCode != http.StatusOK || decode[handler.PostDTO](t, data).Content != "<p>Hi there</p>" {
		t.Fatalf("get by slug: %d %s", resp.StatusCode, data)
	}

	update := map[string]any{"title": "Changed", "excerpt": "e", "content": "c", "tags": []string{"x"}}
	resp, _ = env.doJSON(t, http.MethodPut, "/api/posts/"+first.ID, update, other)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("update by other: expected 401, got %d", resp.StatusCode)
	}
	resp, data = env.doJSON(t, http.MethodPut, "/api/posts/"+first.ID, update, writer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update by owner: expected 200, got %d: %s", resp.StatusCode, data)
	}
	if updated := decode[handler.PostDTO](t, data); updated.Slug != "hello-world" || updated.Title != "Changed" {
		t.Fatalf("expected stable slug and new title, got %+v", updated)
	}

	resp, _ = env.doJSON(t, http.MethodDelete, "/api/posts/"+first.ID, nil, writer)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("delete by non-admin: expected 401, got %d", resp.StatusCode)
	}
	resp, data = env.doJSON(t, http.MethodDelete, "/api/posts/"+first.ID, nil, admin)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(data), "Post deleted successfully") {
		t.Fatalf("delete by admin: %d %s", resp.StatusCode, data)
	}
	resp, data = env.doJSON(t, http.MethodDelete, "/api/posts/"+first.ID, nil, admin)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(data), "Post not found") {
		t.Fatalf("second delete: expected 404, got %d %s", resp.StatusCode, data)
	}

	_, data = env.doJSON(t, http.MethodGet, "/api/posts", nil, nil)
	if list := decode[[]map[string]any](t, data); len(list) != 1 {
		t.Fatalf("expected deleted post gone from list, got %d entries", len(list))
	}
}

func TestAPI_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	_, writer := env.createUser(t, "Writer", "writer@example.com", domain.RoleUser)

	resp, data := env.doJSON(t, http.MethodPost, "/api/posts", map[string]any{
		"title":   strings.Repeat("t", 61),
		"content": "",
		"status":  "archived",
	}, writer)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, data)
	for _, f := range []string{"title", "excerpt", "content", "status"} {
		if body.Fields[f] == "" {
			t.Errorf("expected field error for %s, got %v", f, body.Fields)
		}
	}
}

func TestAPI_DraftVisibility(t *testing.T) {
	env := newTestEnv(t)
	owner, writer := env.createUser(t, "Writer", "writer@example.com", domain.RoleUser)
	_, other := env.createUser(t, "Other", "other@example.com", domain.RoleUser)

	resp, _ := env.doJSON(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Secret", "excerpt": "e", "content": "c", "status": "draft",
	}, writer)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create draft: %d", resp.StatusCode)
	}

	_, data := env.doJSON(t, http.MethodGet, "/api/posts", nil, nil)
	if list := decode[[]map[string]any](t, data); len(list) != 0 {
		t.Fatalf("expected drafts hidden from default listing, got %d", len(list))
	}

	resp, _ = env.doJSON(t, http.MethodGet, "/api/posts/slug/secret", nil, other)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for someone else's draft, got %d", resp.StatusCode)
	}
	resp, _ = env.doJSON(t, http.MethodGet, "/api/posts/slug/secret", nil, writer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected owner to read draft, got %d", resp.StatusCode)
	}

	resp, _ = env.doJSON(t, http.MethodGet, "/api/posts?status=draft", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 listing drafts anonymously, got %d", resp.StatusCode)
	}
	resp, data = env.doJSON(t, http.MethodGet, "/api/posts?status=draft&userId="+owner.ID, nil, writer)
	if resp.StatusCode != http.StatusOK || len(decode[[]map[string]any](t, data)) != 1 {
		t.Fatalf("expected owner to list own drafts, got %d %s", resp.StatusCode, data)
	}

	resp, _ = env.doJSON(t, http.MethodGet, "/api/posts?status=bogus", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-published status, got %d", resp.StatusCode)
	}
}

func TestAPI_Users(t *testing.T) {
	env := newTestEnv(t)
	user, cookie := env.createUser(t, "Ada", "ada@example.com", domain.RoleUser)
	other, _ := env.createUser(t, "Bob", "bob@example.com", domain.RoleUser)

	resp, _ := env.doJSON(t, http.MethodGet, "/api/users/"+user.ID, nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}

	resp, data := env.doJSON(t, http.MethodGet, "/api/users/"+user.ID, nil, cookie)
	if resp.StatusCode != http.StatusOK || strings.Contains(string(data), "password") {
		t.Fatalf("get profile: %d %s", resp.StatusCode, data)
	}

	resp, _ = env.doJSON(t, http.MethodGet, "/api/users/missing", nil, cookie)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, _ = env.doJSON(t, http.MethodPut, "/api/users/"+other.ID, map[string]string{"bio": "hi"}, cookie)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 editing another profile, got %d", resp.StatusCode)
	}

	resp, data = env.doJSON(t, http.MethodPut, "/api/users/"+user.ID, map[string]string{
		"bio": "Writer", "twitter": "@ada", "website": "https://ada.dev",
	}, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update profile: %d %s", resp.StatusCode, data)
	}
	profile := decode[handler.UserDTO](t, data)
	if profile.Name != "Ada" || profile.Twitter != "ada" || profile.Bio != "Writer" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	resp, _ = env.doJSON(t, http.MethodPut, "/api/users/"+user.ID, map[string]string{"website": "ftp://x"}, cookie)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad website, got %d", resp.StatusCode)
	}
}

func TestAPI_Users_ProfileImageField(t *testing.T) {
	env := newTestEnv(t)
	user, cookie := env.createUser(t, "Ada", "ada@example.com", domain.RoleUser)

	resp, data := env.doJSON(t, http.MethodPut, "/api/users/"+user.ID, map[string]string{
		"profileImage": "https://ada.dev/me.png",
	}, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update profileImage: %d %s", resp.StatusCode, data)
	}
	if got := decode[handler.UserDTO](t, data).Image; got != "https://ada.dev/me.png" {
		t.Fatalf("expected image from profileImage, got %q", got)
	}

	resp, data = env.doJSON(t, http.MethodPut, "/api/users/"+user.ID, map[string]string{
		"image":        "https://ada.dev/a.png",
		"profileImage": "https://ada.dev/b.png",
	}, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update both: %d %s", resp.StatusCode, data)
	}
	if got := decode[handler.UserDTO](t, data).Image; got != "https://ada.dev/a.png" {
		t.Fatalf("expected image to win over profileImage, got %q", got)
	}

	resp, data = env.doJSON(t, http.MethodPut, "/api/users/"+user.ID, map[string]string{"bio": "still here"}, cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update bio: %d %s", resp.StatusCode, data)
	}
	if got := decode[handler.UserDTO](t, data).Image; got != "https://ada.dev/a.png" {
		t.Fatalf("expected image unchanged when omitted, got %q", got)
	}
}

func TestAPI_HugePageNumber(t *testing.T) {
	env := newTestEnv(t)
	_, writer := env.createUser(t, "Writer", "writer@example.com", domain.RoleUser)
	_, admin := env.createUser(t, "Admin", "admin@example.com", domain.RoleAdmin)
	env.doJSON(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Paged", "excerpt": "x", "content": "<p>x</p>",
	}, writer)

	for _, path := range []string{
		"/api/posts?page=9223372036854775807",
		"/api/posts?page=99999999999999999999",
		"/blog?page=9223372036854775807",
	} {
		resp, data := env.doJSON(t, http.MethodGet, path, nil, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: expected 200, got %d: %s", path, resp.StatusCode, data)
		}
	}

	resp, data := env.doJSON(t, http.MethodGet, "/admin?page=9223372036854775807", nil, admin)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin dashboard: expected 200, got %d: %s", resp.StatusCode, data)
	}
}

// racingPosts reports every chosen slug as free but loses each insert to a
// concurrent writer.
type racingPosts struct {
	domain.PostRepository
}

func (racingPosts) SlugExists(context.Context, string) (bool, error) { return false, nil }

func (racingPosts) Create(context.Context, *domain.Post) error { return domain.ErrDuplicateSlug }

func TestAPI_CreatePost_SlugRaceConflict(t *testing.T) {
	svc, db := newTestServices(t)
	svc.Posts = service.NewPostService(racingPosts{})
	srv := httptest.NewServer(handler.NewRouter(svc, defaultOptions()))
	t.Cleanup(srv.Close)
	env := &testEnv{srv: srv, db: db, auth: svc.Auth, posts: svc.Posts, users: svc.Users}
	_, writer := env.createUser(t, "Writer", "writer@example.com", domain.RoleUser)

	resp, data := env.doJSON(t, http.MethodPost, "/api/posts", map[string]any{
		"title": "Taken", "excerpt": "x", "content": "<p>x</p>",
	}, writer)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, data)
	}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func uploadRequest(t *testing.T, url string, data []byte, cookie *http.Cookie) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(data)
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestAPI_Upload(t *testing.T) {
	env := newTestEnv(t)
	_, cookie := env.createUser(t, "Ada", "ada@example.com", domain.RoleUser)
	client := newClient(t)

	resp, err := client.Do(uploadRequest(t, env.srv.URL+"/api/upload", pngHeader, nil))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", resp.StatusCode)
	}

	resp, err = client.Do(uploadRequest(t, env.srv.URL+"/api/upload", []byte("plain text"), cookie))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-image, got %d", resp.StatusCode)
	}

	resp, err = client.Do(uploadRequest(t, env.srv.URL+"/api/upload", pngHeader, cookie))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, data)
	}
	url := decode[map[string]string](t, data)["url"]
	if !strings.HasPrefix(url, "/uploads/") {
		t.Fatalf("unexpected url %q", url)
	}

	resp, err = client.Get(env.srv.URL + url)
	if err != nil {
		t.Fatalf("GET upload: %v", err)
	}
	served, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" || !bytes.Equal(served, pngHeader) {
		t.Fatalf("unexpected served upload: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp, err = client.Get(env.srv.URL + "/uploads/not-a-uuid")
	if err != nil {
		t.Fatalf("GET upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	resp, data := env.doJSON(t, http.MethodGet, "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON, got %s", resp.Header.Get("Content-Type"))
	}
	if decode[map[string]string](t, data)["status"] != "ok" {
		t.Fatalf("unexpected body %s", data)
	}
}

func TestAPI_UnknownRoute(t *testing.T) {
	env := newTestEnv(t)
	resp, data := env.doJSON(t, http.MethodGet, "/api/nothing", nil, nil)
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(string(data), "Not found") {
		t.Fatalf("expected JSON 404, got %d %s", resp.StatusCode, data)
	}
}
