package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/inkwell/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, image, bio, location, website, twitter, github, created_at, updated_at`

// UserRepository implements domain.UserRepository using Postgres.
type UserRepository struct {
	pool *pgxpool.Pool
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, user.Name, user.Email, user.PasswordHash, string(user.Role),
		user.Image, user.Bio, user.Location, user.Website, user.Twitter, user.GitHub,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET name = $1, image = $2, bio = $3, location = $4, website = $5, twitter = $6, github = $7, updated_at = $8
		 WHERE id = $9`,
		user.Name, user.Image, user.Bio, user.Location, user.Website, user.Twitter, user.GitHub, now, user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if err := requireRow(tag); err != nil {
		return err
	}
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = now() WHERE id = $2`, string(role), id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return requireRow(tag)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.Image, &u.Bio, &u.Location, &u.Website, &u.Twitter, &u.GitHub, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func requireRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
