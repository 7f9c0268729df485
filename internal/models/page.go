package models

import (
	"time"

	"github.com/google/uuid"
)

// PageType distinguishes the kinds of pages in the unified page tree.
type PageType string

const (
	// PageTypeBlogIndex is a container page listing blog entries.
	PageTypeBlogIndex PageType = "blog_index"
	// PageTypeBlogEntry is a dated leaf page beneath a blog index.
	PageTypeBlogEntry PageType = "blog_entry"
	// PageTypeContent is a generic content page outside the blog.
	PageTypeContent PageType = "content"
)

// Pagination bounds for a blog index.
const (
	MinPostsPerPage     = 1
	MaxPostsPerPage     = 100
	DefaultPostsPerPage = 10
)

// Page represents a node in the page tree. Blog indexes, blog entries, and
// generic content pages share the same table, differentiated by Type.
type Page struct {
	ID       uuid.UUID  `json:"id"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Type     PageType   `json:"type"`
	Title    string     `json:"title"`
	Slug     string     `json:"slug"`
	Body     string     `json:"body"`
	Locale   string     `json:"locale"`
	OwnerID  *uuid.UUID `json:"owner_id,omitempty"`

	// Lifecycle. Live is the published flag; GoLiveAt and ExpireAt drive
	// scheduled publishing.
	Live             bool       `json:"live"`
	FirstPublishedAt *time.Time `json:"first_published_at,omitempty"`
	GoLiveAt         *time.Time `json:"go_live_at,omitempty"`
	ExpireAt         *time.Time `json:"expire_at,omitempty"`

	// PostsPerPage applies to blog indexes only (1–100).
	PostsPerPage int `json:"posts_per_page,omitempty"`

	// Date is the post date of a blog entry. Listings order by it descending.
	Date *time.Time `json:"date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	Tags       []Tag      `json:"tags,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	Owner      *User      `json:"owner,omitempty"`
}

// IsVisible reports whether the page counts as live at the given instant:
// published and not past its expiry.
func (p *Page) IsVisible(now time.Time) bool {
	if !p.Live {
		return false
	}
	if p.ExpireAt != nil && !p.ExpireAt.After(now) {
		return false
	}
	return true
}

// AllowsChild reports whether a page of this type may have a child of the
// given type. Blog indexes only hold blog entries, entries are leaves, and
// content pages nest under each other.
func (t PageType) AllowsChild(child PageType) bool {
	switch t {
	case PageTypeBlogIndex:
		return child == PageTypeBlogEntry
	case PageTypeBlogEntry:
		return false
	case PageTypeContent:
		return child == PageTypeContent
	}
	return false
}

// AllowedAtRoot reports whether a page of this type may live at the tree
// root (no parent). Blog entries always need an index above them.
func (t PageType) AllowedAtRoot() bool {
	return t == PageTypeBlogIndex || t == PageTypeContent
}
