package service_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/repository/sqlite"
	"github.com/msomdec/inkwell/internal/service"
)

func newTestPostService(t *testing.T) (*service.PostService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	return service.NewPostService(db.Posts()), db
}

func newSession(t *testing.T, db *sqlite.DB, email string, role domain.Role) *domain.Session {
	t.Helper()
	u := &domain.User{Name: "Writer " + email, Email: email, PasswordHash: "hash", Role: role}
	if err := db.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &domain.Session{UserID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}

func validInput(title string) service.PostInput {
	return service.PostInput{
		Title:   title,
		Excerpt: "A short excerpt",
		Content: "<p>Body</p>",
	}
}

func TestPostService_Create_Defaults(t *testing.T) {
	svc, db := newTestPostService(t)
	session := newSession(t, db, "writer@example.com", domain.RoleUser)

	in := validInput("Hello, World!")
	in.Tags = []string{" go ", "", "web"}
	post, err := svc.Create(context.Background(), session, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if post.Slug != "hello-world" {
		t.Fatalf("expected slug hello-world, got %q", post.Slug)
	}
	if post.Status != domain.PostStatusPublished {
		t.Fatalf("expected default status published, got %q", post.Status)
	}
	if post.Author != session.Name {
		t.Fatalf("expected author to default to session name, got %q", post.Author)
	}
	if post.UserID != session.UserID {
		t.Fatalf("expected owner %s, got %s", session.UserID, post.UserID)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" || post.Tags[1] != "web" {
		t.Fatalf("expected normalized tags [go web], got %v", post.Tags)
	}
}

func TestPostService_Create_SlugCollisions(t *testing.T) {
	svc, db := newTestPostService(t)
	session := newSession(t, db, "slugs@example.com", domain.RoleUser)
	ctx := context.Background()

	want := []string{"hello-world", "hello-world-1", "hello-world-2"}
	for i, w := range want {
		post, err := svc.Create(ctx, session, validInput("Hello, World!"))
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if post.Slug != w {
			t.Fatalf("post %d: expected slug %q, got %q", i, w, post.Slug)
		}
	}
}

func TestPostService_Create_Validation(t *testing.T) {
	svc, db := newTestPostService(t)
	session := newSession(t, db, "invalid@example.com", domain.RoleUser)

	tests := []struct {
		name   string
		mutate func(*service.PostInput)
		field  string
	}{
		{"missing title", func(in *service.PostInput) { in.Title = " " }, "title"},
		{"long title", func(in *service.PostInput) { in.Title = strings.Repeat("x", 61) }, "title"},
		{"missing excerpt", func(in *service.PostInput) { in.Excerpt = "" }, "excerpt"},
		{"long excerpt", func(in *service.PostInput) { in.Excerpt = strings.Repeat("x", 201) }, "excerpt"},
		{"missing content", func(in *service.PostInput) { in.Content = "" }, "content"},
		{"bad status", func(in *service.PostInput) { in.Status = "archived" }, "status"},
		{"bad cover", func(in *service.PostInput) { in.CoverImage = "javascript:alert(1)" }, "coverImage"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput("Valid")
			tc.mutate(&in)
			_, err := svc.Create(context.Background(), session, in)

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestPostService_Create_RequiresSession(t *testing.T) {
	svc, _ := newTestPostService(t)
	if _, err := svc.Create(context.Background(), nil, validInput("x")); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestPostService_List(t *testing.T) {
	svc, db := newTestPostService(t)
	alice := newSession(t, db, "alice@example.com", domain.RoleUser)
	bob := newSession(t, db, "bob@example.com", domain.RoleUser)
	ctx := context.Background()

	create := func(s *domain.Session, title, status string, tags ...string) {
		t.Helper()
		in := validInput(title)
		in.Status = status
		in.Tags = tags
		if _, err := svc.Create(ctx, s, in); err != nil {
			t.Fatalf("Create %q: %v", title, err)
		}
	}
	create(alice, "First", "published", "go")
	create(alice, "Draft", "draft", "go")
	create(bob, "Second", "published", "rust")
	create(bob, "Third", "published", "go")

	t.Run("published only by default, newest first", func(t *testing.T) {
		posts, err := svc.List(ctx, service.ListParams{})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		got := slugs(posts)
		if strings.Join(got, ",") != "third,second,first" {
			t.Fatalf("unexpected order: %v", got)
		}
	})

	t.Run("category", func(t *testing.T) {
		posts, err := svc.List(ctx, service.ListParams{Category: "go"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if strings.Join(slugs(posts), ",") != "third,first" {
			t.Fatalf("unexpected posts: %v", slugs(posts))
		}
	})

	t.Run("user and drafts", func(t *testing.T) {
		posts, err := svc.List(ctx, service.ListParams{UserID: alice.UserID, Status: "draft"})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if strings.Join(slugs(posts), ",") != "draft" {
			t.Fatalf("unexpected posts: %v", slugs(posts))
		}
	})

	t.Run("all statuses", func(t *testing.T) {
		n, err := svc.Count(ctx, service.ListParams{Status: service.StatusAll})
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 4 {
			t.Fatalf("expected 4 posts, got %d", n)
		}
	})

	t.Run("paging", func(t *testing.T) {
		posts, err := svc.List(ctx, service.ListParams{Page: 2, Limit: 2})
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if strings.Join(slugs(posts), ",") != "first" {
			t.Fatalf("unexpected page 2: %v", slugs(posts))
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		if _, err := svc.List(ctx, service.ListParams{Status: "archived"}); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestPostService_List_DefaultLimit(t *testing.T) {
	svc, db := newTestPostService(t)
	session := newSession(t, db, "many@example.com", domain.RoleUser)
	ctx := context.Background()

	for i := range 15 {
		if _, err := svc.Create(ctx, session, validInput(fmt.Sprintf("Post %d", i))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	posts, err := svc.List(ctx, service.ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != service.DefaultPageSize {
		t.Fatalf("expected %d posts, got %d", service.DefaultPageSize, len(posts))
	}
}

func TestPostService_Update(t *testing.T) {
	svc, db := newTestPostService(t)
	owner := newSession(t, db, "owner@example.com", domain.RoleUser)
	other := newSession(t, db, "other@example.com", domain.RoleUser)
	admin := newSession(t, db, "admin@example.com", domain.RoleAdmin)
	ctx := context.Background()

	post, err := svc.Create(ctx, owner, validInput("Original Title"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	edit := validInput("Renamed Title")
	edit.Status = "draft"
	if _, err := svc.Update(ctx, other, post.ID, edit); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-owner, got %v", err)
	}

	updated, err := svc.Update(ctx, owner, post.ID, edit)
	if err != nil {
		t.Fatalf("Update by owner: %v", err)
	}
	if updated.Title != "Renamed Title" || updated.Status != domain.PostStatusDraft {
		t.Fatalf("unexpected post: %+v", updated)
	}
	if updated.Slug != "original-title" {
		t.Fatalf("slug must stay stable, got %q", updated.Slug)
	}

	if _, err := svc.Update(ctx, admin, post.ID, validInput("Admin Edit")); err != nil {
		t.Fatalf("Update by admin: %v", err)
	}

	if _, err := svc.Update(ctx, owner, "missing", edit); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostService_Delete(t *testing.T) {
	svc, db := newTestPostService(t)
	owner := newSession(t, db, "deleter@example.com", domain.RoleUser)
	admin := newSession(t, db, "root@example.com", domain.RoleAdmin)
	ctx := context.Background()

	post, err := svc.Create(ctx, owner, validInput("Doomed"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, owner, post.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}
	if err := svc.Delete(ctx, admin, post.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, post.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	posts, err := svc.List(ctx, service.ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("deleted post still listed: %v", slugs(posts))
	}
}

func TestPostService_Tags(t *testing.T) {
	svc, db := newTestPostService(t)
	session := newSession(t, db, "tags@example.com", domain.RoleUser)
	ctx := context.Background()

	for _, in := range []service.PostInput{
		{Title: "One", Excerpt: "e", Content: "c", Tags: []string{"go", "web"}},
		{Title: "Two", Excerpt: "e", Content: "c", Tags: []string{"databases", "go"}},
		{Title: "Hidden", Excerpt: "e", Content: "c", Tags: []string{"secret"}, Status: "draft"},
	} {
		if _, err := svc.Create(ctx, session, in); err != nil {
			t.Fatalf("Create %q: %v", in.Title, err)
		}
	}

	tags, err := svc.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	want := []string{"databases", "go", "web"}
	if !slices.Equal(tags, want) {
		t.Fatalf("expected %v, got %v", want, tags)
	}
}

func TestPostService_Seed(t *testing.T) {
	svc, db := newTestPostService(t)
	ctx := context.Background()
	owner := &domain.User{Name: "Seeder", Email: "seed@example.com", PasswordHash: "h"}
	if err := db.Users().Create(ctx, owner); err != nil {
		t.Fatalf("Create user: %v", err)
	}

	n, err := svc.Seed(ctx, owner)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if n != service.SamplePostCount() {
		t.Fatalf("expected %d posts, got %d", service.SamplePostCount(), n)
	}

	again, err := svc.Seed(ctx, owner)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected reseed to skip existing posts, created %d", again)
	}
}

func slugs(posts []domain.PostSummary) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

// racingPosts simulates another writer claiming each chosen slug between
// the existence check and the insert.
type racingPosts struct {
	domain.PostRepository
	taken    map[string]bool
	failures int
	creates  int
}

func (r *racingPosts) SlugExists(_ context.Context, slug string) (bool, error) {
	return r.taken[slug], nil
}

func (r *racingPosts) Create(_ context.Context, p *domain.Post) error {
	r.creates++
	if r.failures != 0 {
		r.failures--
		r.taken[p.Slug] = true
		return domain.ErrDuplicateSlug
	}
	r.taken[p.Slug] = true
	p.ID = fmt.Sprintf("post-%d", r.creates)
	return nil
}

func TestPostService_Create_SlugRaceRetries(t *testing.T) {
	repo := &racingPosts{taken: map[string]bool{}, failures: 1}
	svc := service.NewPostService(repo)
	session := &domain.Session{UserID: "u1", Name: "Writer"}

	post, err := svc.Create(context.Background(), session, validInput("Hello, World!"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if post.Slug != "hello-world-1" {
		t.Fatalf("expected slug hello-world-1 after a lost race, got %q", post.Slug)
	}
	if repo.creates != 2 {
		t.Fatalf("expected 2 insert attempts, got %d", repo.creates)
	}
}

func TestPostService_Create_SlugRaceExhausted(t *testing.T) {
	repo := &racingPosts{taken: map[string]bool{}, failures: -1}
	svc := service.NewPostService(repo)
	session := &domain.Session{UserID: "u1", Name: "Writer"}

	_, err := svc.Create(context.Background(), session, validInput("Hello, World!"))
	if !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
	if repo.creates != 4 {
		t.Fatalf("expected 4 insert attempts, got %d", repo.creates)
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{42, 42},
		{service.MaxPage, service.MaxPage},
		{int(^uint(0) >> 1), service.MaxPage},
	}
	for _, tt := range tests {
		if got := service.ClampPage(tt.in); got != tt.want {
			t.Errorf("ClampPage(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
