package service

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern   = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	websitePattern = regexp.MustCompile(`^https?://`)
)

// fieldErrors collects per-field validation messages, keeping the first
// message for each field.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) required(field, value, msg string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, msg)
	}
}

func (f fieldErrors) maxLen(field, value string, n int, msg string) {
	if utf8.RuneCountInString(value) > n {
		f.add(field, msg)
	}
}

// NormalizeEmail trims and lowercases an address. Emails are compared in
// this form everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseTags splits a comma-separated tag string.
func ParseTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}

// normalizeTags trims each tag and drops empties, preserving order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// validImageURL accepts absolute http(s) URLs and paths served from /uploads/.
func validImageURL(s string) bool {
	if strings.HasPrefix(s, "/uploads/") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
