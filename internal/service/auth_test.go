package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/repository/sqlite"
	"github.com/msomdec/inkwell/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests-32chars"

func newTestDB(t *testing.T) *sqlite.DB {
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
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, 30*24*time.Hour)
	return auth, db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "  New User ", " New@Example.COM ", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Name != "New User" {
		t.Fatalf("expected trimmed name, got %q", user.Name)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %q", user.Role)
	}

	stored, err := db.Users().GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PasswordHash == "secret1" || stored.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestAuthService_Register_DuplicateEmailCaseInsensitive(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "User 1", "dup@example.com", "password123"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := auth.Register(ctx, "User 2", "DUP@example.com", "password456")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password string
		field                           string
	}{
		{"missing name", "", "a@example.com", "secret1", ""},
		{"missing email", "A", "", "secret1", ""},
		{"missing password", "A", "a@example.com", "", ""},
		{"short password", "A", "a@example.com", "12345", "password"},
		{"password over 72 bytes", "A", "a@example.com", strings.Repeat("x", 73), "password"},
		{"bad email", "A", "not-an-email", "secret1", "email"},
		{"long name", "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijk", "a@example.com", "secret1", "name"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.userName, tc.email, tc.password)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if tc.field == "" {
				return
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected error for field %q, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "Login", "login@example.com", "password123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := auth.Login(ctx, "LOGIN@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}

	session, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if session.UserID != registered.ID || session.Role != domain.RoleUser || session.Name != "Login" {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "Wrong", "wrong@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// A user without a password hash (e.g. created by an external provider).
	if err := db.Users().Create(ctx, &domain.User{Name: "NoPass", Email: "nopass@example.com"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := map[string][2]string{
		"wrong password": {"wrong@example.com", "wrongpassword"},
		"unknown user":   {"nobody@example.com", "password123"},
		"no hash":        {"nopass@example.com", "anything"},
		"empty":          {"", ""},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := auth.Login(ctx, c[0], c[1])
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	auth, _ := newTestAuthService(t)

	if _, err := auth.ValidateToken("invalid.token.here"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	auth1 := service.NewAuthService(db.Users(), "secret-one-that-is-at-least-32-characters", 4, time.Hour)
	auth2 := service.NewAuthService(db.Users(), "secret-two-that-is-at-least-32-characters", 4, time.Hour)

	if _, err := auth1.Register(ctx, "Secret", "secret@example.com", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := auth1.Login(ctx, "secret@example.com", "password123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := auth2.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized with wrong secret, got %v", err)
	}
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	auth, _ := newTestAuthService(t)

	claims := jwt.MapClaims{
		"sub":  "someone",
		"role": "user",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := auth.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestAuthService_TokenCarriesAdminRole(t *testing.T) {
	auth, _ := newTestAuthService(t)

	token, err := auth.IssueToken(&domain.User{ID: "admin-1", Name: "Admin", Email: "a@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	session, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if !session.IsAdmin() {
		t.Fatalf("expected admin session, got %+v", session)
	}
}
