package handlers

import (
	"strings"
	"unicode/utf8"

	"gazette/internal/models"
)

// Validation limits for page and category fields.
const (
	maxTitleLen       = 300
	maxSlugLen        = 300
	maxBodyLen        = 100_000
	maxDescriptionLen = 500
	maxNameLen        = 100
)

// validatePage checks page inputs and returns the first error found.
func validatePage(pageType models.PageType, title, slug, body string, postsPerPage int) string {
	switch pageType {
	case models.PageTypeBlogIndex, models.PageTypeBlogEntry, models.PageTypeContent:
	default:
		return "Unknown page type."
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if pageType == models.PageTypeBlogIndex && postsPerPage != 0 &&
		(postsPerPage < models.MinPostsPerPage || postsPerPage > models.MaxPostsPerPage) {
		return "Posts per page must be between 1 and 100."
	}
	return ""
}

// validateCategory checks category inputs and returns the first error found.
func validateCategory(name, slug, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 100 characters)."
	}
	if utf8.RuneCountInString(slug) > maxSlugLen {
		return "Slug is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "Description is too long (max 500 characters)."
	}
	return ""
}
