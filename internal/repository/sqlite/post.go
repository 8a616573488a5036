package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/inkwell/internal/domain"
)

const (
	postColumns    = `id, title, slug, excerpt, content, cover_image, author, user_id, status, tags, created_at, updated_at`
	summaryColumns = `id, title, slug, excerpt, cover_image, author, user_id, status, tags, created_at, updated_at`
)

// PostRepository implements domain.PostRepository using SQLite. Tags are
// stored as a JSON array and filtered with json_each.
type PostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLite-backed PostRepository.
func NewPostRepository(db *DB) *PostRepository {
	return &PostRepository{db: db.SqlDB}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) error {
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, post.Title, post.Slug, post.Excerpt, post.Content, post.CoverImage,
		post.Author, post.UserID, string(post.Status), tags, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err, "posts.slug") {
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
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	return r.scanOne(row, "get post")
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
	return r.scanOne(row, "get post by slug")
}

func (r *PostRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = ?)`, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}

func (r *PostRepository) List(ctx context.Context, filter domain.PostFilter) ([]domain.PostSummary, error) {
	where, args := buildPostWhere(filter)
	query := `SELECT ` + summaryColumns + ` FROM posts` + where + ` ORDER BY created_at DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.PostSummary{}
	for rows.Next() {
		var (
			p      domain.PostSummary
			status string
			tags   string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.CoverImage, &p.Author,
			&p.UserID, &status, &tags, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.Status = domain.PostStatus(status)
		if p.Tags, err = decodeTags(tags); err != nil {
			return nil, err
		}
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) DistinctTags(ctx context.Context, status domain.PostStatus) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT json_each.value FROM posts, json_each(posts.tags)
		 WHERE posts.status = ?
		 ORDER BY json_each.value`,
		string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, excerpt = ?, content = ?, cover_image = ?, author = ?, status = ?, tags = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title, post.Excerpt, post.Content, post.CoverImage, post.Author,
		string(post.Status), tags, now, post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}
	post.UpdatedAt = now
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireRow(result)
}

func (r *PostRepository) scanOne(row *sql.Row, op string) (*domain.Post, error) {
	var (
		p      domain.Post
		status string
		tags   string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.CoverImage, &p.Author,
		&p.UserID, &status, &tags, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Status = domain.PostStatus(status)
	if p.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	return &p, nil
}

func buildPostWhere(f domain.PostFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Tag != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(posts.tags) WHERE json_each.value = ?)")
		args = append(args, f.Tag)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
