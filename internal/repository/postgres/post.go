package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/msomdec/inkwell/internal/domain"
)

const (
	postColumns    = `id, title, slug, excerpt, content, cover_image, author, user_id, status, tags, created_at, updated_at`
	summaryColumns = `id, title, slug, excerpt, cover_image, author, user_id, status, tags, created_at, updated_at`
)

// PostRepository implements domain.PostRepository using Postgres. Tags are a
// text[] column.
type PostRepository struct {
	pool *pgxpool.Pool
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := uuid.NewString()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, post.Title, post.Slug, post.Excerpt, post.Content, post.CoverImage,
		post.Author, post.UserID, string(post.Status), nonNil(post.Tags), now, now,
	)
	if err != nil {
		if isUniqueViolation(err, "posts_slug_key") {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("insert post: %w", err)
	}

	post.ID = id
	post.CreatedAt = now
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return r.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1)`, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *PostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.PostSummary, error) {
	where, args := buildPostWhere(filter)
	query := `SELECT ` + summaryColumns + ` FROM posts` + where + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		n := len(args)
		query += ` LIMIT $` + strconv.Itoa(n+1) + ` OFFSET $` + strconv.Itoa(n+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.PostSummary{}
	for rows.Next() {
		var (
			p      domain.PostSummary
			status string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.CoverImage, &p.Author,
			&p.UserID, &status, &p.Tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Status = domain.PostStatus(status)
		p.Tags = nonNil(p.Tags)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) Count(ctx context.Context, filter domain.PostFilter) (int, error) {
	where, args := buildPostWhere(filter)
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) DistinctTags(ctx context.Context, status domain.PostStatus) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT tag FROM posts, unnest(tags) AS tag
		 WHERE status = $1
		 ORDER BY tag COLLATE "C"`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return nonNil(tags), nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts
		 SET title = $1, excerpt = $2, content = $3, cover_image = $4, author = $5, status = $6, tags = $7, updated_at = $8
		 WHERE id = $9`,
		post.Title, post.Excerpt, post.Content, post.CoverImage, post.Author,
		string(post.Status), nonNil(post.Tags), now, post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if err := requireRow(tag); err != nil {
		return err
	}
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireRow(tag)
}

func (r *PostRepository) getOne(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var (
		p      domain.Post
		status string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content,
		&p.CoverImage, &p.Author, &p.UserID, &status, &p.Tags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query post: %w", err)
	}
	p.Status = domain.PostStatus(status)
	p.Tags = nonNil(p.Tags)
	return &p, nil
}

func buildPostWhere(f domain.PostFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.UserID != "" {
		add("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.Tag != "" {
		add("? = ANY(tags)", f.Tag)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
