package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// Slugify turns a title into a URL-safe slug: lowercase ASCII letters,
// digits and single hyphens. Titles with nothing sluggable become "post".
func Slugify(title string) string {
	s := slug.Make(strings.ReplaceAll(title, "_", " "))
	if s == "" {
		return "post"
	}
	return s
}

// uniqueSlug returns Slugify(title), suffixed with -1, -2, ... until no
// existing post uses it.
func (s *PostService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	candidate := base
	for n := 1; ; n++ {
		exists, err := s.posts.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
