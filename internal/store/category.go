package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"gazette/internal/models"
	"gazette/internal/slug"
)

// DefaultLocale is assumed when a record or lookup doesn't specify one.
const DefaultLocale = "fr"

// CategoryStore manages the category taxonomy in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, locale, translation_key, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.Locale, &c.TranslationKey, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the categories of a locale ordered by name.
func (s *CategoryStore) List(locale string) ([]models.Category, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+` FROM categories
		WHERE locale = $1
		ORDER BY name
	`, locale)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug within a locale. Returns nil if
// not found.
func (s *CategoryStore) FindBySlug(categorySlug, locale string) (*models.Category, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	row := s.db.QueryRow(`
		SELECT `+categoryColumns+` FROM categories
		WHERE slug = $1 AND locale = $2
	`, categorySlug, locale)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. The slug derives from the
// name when absent, and the parent reference is validated against the
// two-level cycle rules before insert.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	normalizeCategory(c)
	if err := s.validateParent(c); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, locale, translation_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Locale, c.TranslationKey,
	)
	result, err := scanCategory(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create category %q: %w", c.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category, applying the same slug derivation
// and parent validation as Create.
func (s *CategoryStore) Update(c *models.Category) error {
	normalizeCategory(c)
	if err := s.validateParent(c); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			locale = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Slug, c.Description, c.ParentID, c.Locale, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update category %q: %w", c.Name, ErrDuplicate)
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// Delete removes a category by ID. Children are re-parented to null
// (ON DELETE SET NULL) and through-table rows cascade away.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// normalizeCategory fills derivable fields before a write: slug from name,
// default locale, and a fresh translation key.
func normalizeCategory(c *models.Category) {
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.TranslationKey == uuid.Nil {
		c.TranslationKey = uuid.New()
	}
}

// validateParent loads the prospective parent and applies the model-level
// cycle check. A dangling parent reference is rejected up front rather than
// left to the foreign key.
func (s *CategoryStore) validateParent(c *models.Category) error {
	if c.ParentID == nil {
		return nil
	}
	parent, err := s.FindByID(*c.ParentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("category parent %s: %w", *c.ParentID, ErrParentNotFound)
	}
	return c.ValidateParent(parent)
}
