package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/inkwell/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 50
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// AuthService handles user registration, login, and session tokens.
type AuthService struct {
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
	maxAge     time.Duration
}

// NewAuthService creates a new AuthService. Tokens expire after maxAge.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int, maxAge time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		maxAge:     maxAge,
	}
}

// SessionMaxAge is the lifetime of issued tokens.
func (s *AuthService) SessionMaxAge() time.Duration {
	return s.maxAge
}

// Register creates a user account with the default role.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}

	errs := fieldErrors{}
	errs.maxLen("name", name, MaxNameLength, "Name cannot be more than 50 characters")
	if !emailPattern.MatchString(email) {
		errs.add("email", "Please provide a valid email")
	}
	if len(password) < MinPasswordLength {
		errs.add("password", "Password must be at least 6 characters long")
	} else if len(password) > MaxPasswordLength {
		errs.add("password", "Password cannot be more than 72 bytes")
	}
	if err := domain.NewValidationError(errs); err != nil {
		return nil, err
	}

	// Fast path for the common duplicate case; the unique index still
	// guards concurrent signups.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns a signed session token. Every
// credential failure is reported as ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrUnauthorized
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if user.PasswordHash == "" {
		return "", nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrUnauthorized
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("generate jwt: %w", err)
	}
	return token, user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"role":  string(user.Role),
		"name":  user.Name,
		"email": user.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.maxAge).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrUnauthorized
	}

	role := domain.Role(stringClaim(claims, "role"))
	if !role.Valid() {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Session{
		UserID: sub,
		Role:   role,
		Name:   stringClaim(claims, "name"),
		Email:  stringClaim(claims, "email"),
	}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
