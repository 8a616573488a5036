// Package view holds the templ components for every server-rendered page.
// Edit the .templ sources and run `templ generate`; the *_templ.go files are
// generated.
package view

import (
	"net/url"
	"strconv"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// contentPolicy strips scripts, event handlers and other unsafe markup from
// author-supplied post bodies.
var contentPolicy = bluemonday.UGCPolicy()

// SanitizeContent returns post HTML that is safe to embed in a page.
func SanitizeContent(content string) string {
	return contentPolicy.Sanitize(content)
}

// AdminPostRowID is the element id of a post's admin table row.
func AdminPostRowID(postID string) string {
	return "post-" + postID
}

var authErrorMessages = map[string]string{
	"AccessDenied":      "You do not have permission to view this page.",
	"CredentialsSignin": "Invalid email or password.",
	"SessionRequired":   "Please sign in to continue.",
}

func authErrorMessage(code string) string {
	if msg, ok := authErrorMessages[code]; ok {
		return msg
	}
	return "An authentication error occurred."
}

func formatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func tagURL(tag string) string {
	return "/explore?tag=" + url.QueryEscape(tag)
}

func editURL(postID string) string {
	return "/admin/compose?edit=" + url.QueryEscape(postID)
}

// pageURL appends the page parameter to base, which ends in '?' or '&'.
func pageURL(base string, page int) string {
	return base + "page=" + strconv.Itoa(page)
}

// deleteAction is the datastar expression behind an admin delete button.
func deleteAction(postID string) string {
	return "confirm('Delete this post?') && @delete('/admin/posts/" + url.PathEscape(postID) + "')"
}
