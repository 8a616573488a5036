package domain

import (
	"context"
	"time"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
)

// Valid reports whether s is a known status.
func (s PostStatus) Valid() bool {
	return s == PostStatusDraft || s == PostStatusPublished
}

const (
	MaxTitleLength   = 60
	MaxExcerptLength = 200
)

// Post is a blog article. Content holds rich text (HTML).
type Post struct {
	ID         string
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	CoverImage string
	Author     string
	UserID     string
	Status     PostStatus
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostSummary is a Post without its content, used by list views.
type PostSummary struct {
	ID         string
	Title      string
	Slug       string
	Excerpt    string
	CoverImage string
	Author     string
	UserID     string
	Status     PostStatus
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PostFilter narrows a post listing. Empty fields do not filter. Results are
// always ordered newest first.
type PostFilter struct {
	UserID string
	Status PostStatus
	Tag    string
	Limit  int
	Offset int
}

// PostRepository defines persistence operations for posts. Create must
// return ErrDuplicateSlug when the slug is already taken.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, filter PostFilter) ([]PostSummary, error)
	Count(ctx context.Context, filter PostFilter) (int, error)
	// DistinctTags returns every tag used by posts with the given status,
	// sorted.
	DistinctTags(ctx context.Context, status PostStatus) ([]string, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
}
