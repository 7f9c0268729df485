package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gazette/internal/models"
	"gazette/internal/slug"
)

// TagStore manages tags in the database.
type TagStore struct {
	db *sql.DB
}

// NewTagStore returns a new TagStore.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// List returns all tags ordered by name.
func (s *TagStore) List() ([]models.Tag, error) {
	rows, err := s.db.Query(`SELECT id, name, slug, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// ListWithCounts returns all tags with their site-wide usage counts,
// ordered by count descending. Used by the admin panel.
func (s *TagStore) ListWithCounts() ([]models.TagCount, error) {
	rows, err := s.db.Query(`
		SELECT t.name, t.slug, COUNT(pt.page_id) AS cnt
		FROM tags t
		LEFT JOIN page_tags pt ON pt.tag_id = t.id
		GROUP BY t.name, t.slug
		ORDER BY cnt DESC, t.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags with counts: %w", err)
	}
	defer rows.Close()

	var counts []models.TagCount
	for rows.Next() {
		var c models.TagCount
		if err := rows.Scan(&c.Name, &c.Slug, &c.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// FindBySlug retrieves a tag by slug. Returns nil if not found.
func (s *TagStore) FindBySlug(tagSlug string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.db.QueryRow(`
		SELECT id, name, slug, created_at FROM tags WHERE slug = $1
	`, tagSlug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find tag by slug: %w", err)
	}
	return t, nil
}

// GetOrCreate returns the tag with the slug derived from name, creating it
// when missing. Tag names are stored as given but matched by their
// lowercase slug, so "Go" and "go" resolve to the same tag.
func (s *TagStore) GetOrCreate(name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	tagSlug := slug.Generate(name)
	if tagSlug == "" {
		return nil, fmt.Errorf("tag name %q produces an empty slug", name)
	}

	t := &models.Tag{}
	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
	err := s.db.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ($1, $2)
		ON CONFLICT (slug) DO UPDATE SET name = tags.name
		RETURNING id, name, slug, created_at
	`, name, tagSlug).Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create tag %q: %w", name, err)
	}
	return t, nil
}

// Delete removes a tag by ID; its through-table rows cascade away.
func (s *TagStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
