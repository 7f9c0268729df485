package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category parent validation errors, surfaced by the admin API as 422s.
var (
	// ErrCategoryOwnParent is returned when a category is set as its own parent.
	ErrCategoryOwnParent = errors.New("parent category cannot be self")
	// ErrCategoryCircularParent is returned when a category takes as parent
	// a category it is already the parent of.
	ErrCategoryCircularParent = errors.New("cannot have circular parents")
)

// Category is a taxonomy node for blog entries. The hierarchy is
// self-referential and effectively two levels deep: validation rejects
// self-parenting and direct parent swaps, nothing more.
//
// Categories are translated per locale: Name, Slug, and TranslationKey are
// each unique within a locale, and translated copies of the same logical
// category share a TranslationKey.
type Category struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	ParentID       *uuid.UUID `json:"parent_id,omitempty"`
	Locale         string     `json:"locale"`
	TranslationKey uuid.UUID  `json:"translation_key"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Virtual field populated by store methods.
	Parent *Category `json:"parent,omitempty"`
}

// ValidateParent checks the category's prospective parent. It rejects
// self-parenting and the two-level cycle (a parent whose own parent is this
// category). Longer cycles are not detected; a nil parent is always valid.
func (c *Category) ValidateParent(parent *Category) error {
	if parent == nil {
		return nil
	}
	if parent.ID == c.ID {
		return ErrCategoryOwnParent
	}
	if parent.ParentID != nil && *parent.ParentID == c.ID {
		return ErrCategoryCircularParent
	}
	return nil
}

// PageCategory is the through-model joining a blog entry to a category.
type PageCategory struct {
	PageID     uuid.UUID `json:"page_id"`
	CategoryID uuid.UUID `json:"category_id"`
}

// CategoryCount is a category usage aggregate over a blog index's live posts.
type CategoryCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}
