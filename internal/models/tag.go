package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form label attached to pages. Slugs are lowercase and
// unique across the whole site; tags are shared between locales.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// PageTag is the through-model joining a page to a tag.
type PageTag struct {
	PageID uuid.UUID `json:"page_id"`
	TagID  uuid.UUID `json:"tag_id"`
}

// TagCount is a tag usage aggregate over a blog index's live posts.
type TagCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}
