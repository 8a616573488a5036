package view

import (
	"strings"

	"github.com/msomdec/inkwell/internal/domain"
)

// DraftStorageKey is the localStorage key holding the unsaved compose draft.
const DraftStorageKey = "blogDraft"

var postStatuses = []domain.PostStatus{domain.PostStatusPublished, domain.PostStatusDraft}

// composeFields are the editor's initial values. Tags are comma joined.
type composeFields struct {
	ID, Title, Excerpt, Content string
	CoverImage, Author, Tags    string
	Status                      domain.PostStatus
}

func newComposeFields(post *domain.Post) composeFields {
	if post == nil {
		return composeFields{Status: domain.PostStatusPublished}
	}
	return composeFields{
		ID:         post.ID,
		Title:      post.Title,
		Excerpt:    post.Excerpt,
		Content:    post.Content,
		CoverImage: post.CoverImage,
		Author:     post.Author,
		Tags:       strings.Join(post.Tags, ", "),
		Status:     post.Status,
	}
}

func composeHeading(post *domain.Post) string {
	if post == nil {
		return "New post"
	}
	return "Edit post"
}
