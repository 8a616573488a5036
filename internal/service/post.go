package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/msomdec/inkwell/internal/domain"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	// MaxPage keeps page*MaxPageSize within 32 bits, so offsets never
	// overflow on any store.
	MaxPage = math.MaxInt32 / MaxPageSize

	// StatusAll lists posts regardless of status.
	StatusAll = "all"

	// slugRetries bounds how often Create picks a new slug after a
	// concurrent create claimed the chosen one first.
	slugRetries = 3
)

// PostInput is the editable part of a post.
type PostInput struct {
	Title      string
	Excerpt    string
	Content    string
	CoverImage string
	Author     string
	Status     string
	Tags       []string
}

// ListParams selects a page of posts. Zero values mean page 1, the default
// page size, and published posts only.
type ListParams struct {
	Page     int
	Limit    int
	UserID   string
	Status   string
	Category string
}

// PostService implements post creation, listing, editing and deletion.
type PostService struct {
	posts domain.PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(posts domain.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// Create validates input and stores a new post owned by the session user.
func (s *PostService) Create(ctx context.Context, session *domain.Session, in PostInput) (*domain.Post, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	post := &domain.Post{UserID: session.UserID}
	if err := applyPostInput(post, in, session.Name); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, post.Title)
		if err != nil {
			return nil, err
		}
		post.Slug = slug

		err = s.posts.Create(ctx, post)
		if err == nil {
			return post, nil
		}
		if !errors.Is(err, domain.ErrDuplicateSlug) || attempt >= slugRetries {
			return nil, fmt.Errorf("create post: %w", err)
		}
	}
}

// List returns post summaries, newest first.
func (s *PostService) List(ctx context.Context, p ListParams) ([]domain.PostSummary, error) {
	filter, err := p.filter()
	if err != nil {
		return nil, err
	}
	return s.posts.List(ctx, filter)
}

// Count returns the number of posts matching p, ignoring paging.
func (s *PostService) Count(ctx context.Context, p ListParams) (int, error) {
	filter, err := p.filter()
	if err != nil {
		return 0, err
	}
	return s.posts.Count(ctx, filter)
}

// Tags returns the distinct tags of all published posts, sorted.
func (s *PostService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.posts.DistinctTags(ctx, domain.PostStatusPublished)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return s.posts.GetBySlug(ctx, slug)
}

func (s *PostService) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// Update edits a post. Only its owner or an admin may do so. The slug is
// kept so existing links stay valid.
func (s *PostService) Update(ctx context.Context, session *domain.Session, id string, in PostInput) (*domain.Post, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.CanEdit(post.UserID) {
		return nil, domain.ErrUnauthorized
	}

	if err := applyPostInput(post, in, post.Author); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// Delete removes a post. Admin only.
func (s *PostService) Delete(ctx context.Context, session *domain.Session, id string) error {
	if !session.IsAdmin() {
		return domain.ErrUnauthorized
	}
	return s.posts.Delete(ctx, id)
}

// applyPostInput validates in and copies it onto post. defaultAuthor is used
// when in.Author is blank.
func applyPostInput(post *domain.Post, in PostInput, defaultAuthor string) error {
	title := strings.TrimSpace(in.Title)
	excerpt := strings.TrimSpace(in.Excerpt)
	cover := strings.TrimSpace(in.CoverImage)

	errs := fieldErrors{}
	errs.required("title", title, "Please provide a title")
	errs.maxLen("title", title, domain.MaxTitleLength, "Title cannot be more than 60 characters")
	errs.required("excerpt", excerpt, "Please provide an excerpt")
	errs.maxLen("excerpt", excerpt, domain.MaxExcerptLength, "Excerpt cannot be more than 200 characters")
	errs.required("content", in.Content, "Please provide content")

	status := domain.PostStatusPublished
	if in.Status != "" {
		status = domain.PostStatus(in.Status)
		if !status.Valid() {
			errs.add("status", "Status must be draft or published")
		}
	}
	if cover != "" && !validImageURL(cover) {
		errs.add("coverImage", "Cover image must be a valid URL")
	}
	if err := domain.NewValidationError(errs); err != nil {
		return err
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = defaultAuthor
	}

	post.Title = title
	post.Excerpt = excerpt
	post.Content = in.Content
	post.CoverImage = cover
	post.Author = author
	post.Status = status
	post.Tags = normalizeTags(in.Tags)
	return nil
}

// ClampPage bounds a requested page number to [1, MaxPage].
func ClampPage(page int) int {
	return min(max(page, 1), MaxPage)
}

func (p ListParams) filter() (domain.PostFilter, error) {
	page := ClampPage(p.Page)
	limit := p.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)

	f := domain.PostFilter{
		UserID: p.UserID,
		Tag:    strings.TrimSpace(p.Category),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	switch p.Status {
	case "":
		f.Status = domain.PostStatusPublished
	case StatusAll:
	default:
		f.Status = domain.PostStatus(p.Status)
		if !f.Status.Valid() {
			return domain.PostFilter{}, domain.NewValidationError(map[string]string{
				"status": "Status must be draft, published or all",
			})
		}
	}
	return f, nil
}
