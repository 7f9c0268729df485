package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"gazette/internal/models"
	"gazette/internal/slug"
)

// PageStore handles all page-tree database operations: blog indexes, blog
// entries, and content pages share the unified pages table.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

const pageColumns = `id, parent_id, type, title, slug, body, locale, owner_id,
	live, first_published_at, go_live_at, expire_at, posts_per_page, date,
	created_at, updated_at`

// scanPage scans a row into a Page struct.
func scanPage(scanner interface{ Scan(...any) error }) (*models.Page, error) {
	var p models.Page
	err := scanner.Scan(
		&p.ID, &p.ParentID, &p.Type, &p.Title, &p.Slug, &p.Body, &p.Locale,
		&p.OwnerID, &p.Live, &p.FirstPublishedAt, &p.GoLiveAt, &p.ExpireAt,
		&p.PostsPerPage, &p.Date, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a page by its UUID. Returns nil if not found.
func (s *PageStore) FindByID(id uuid.UUID) (*models.Page, error) {
	row := s.db.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE id = $1`, id)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindIndexBySlug retrieves a blog index page by its slug. Indexes live at
// the tree root, so the slug is unique. Returns nil if not found.
func (s *PageStore) FindIndexBySlug(indexSlug string) (*models.Page, error) {
	row := s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE parent_id IS NULL AND type = 'blog_index' AND slug = $1
	`, indexSlug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog index by slug: %w", err)
	}
	return p, nil
}

// FindEntry retrieves a blog entry of an index by slug. Entries are leaves
// directly beneath their index. Returns nil if not found.
func (s *PageStore) FindEntry(indexID uuid.UUID, entrySlug string) (*models.Page, error) {
	row := s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE parent_id = $1 AND type = 'blog_entry' AND slug = $2
	`, indexID, entrySlug)
	p, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog entry by slug: %w", err)
	}
	return p, nil
}

// ListChildren returns the direct children of a page (or the root pages for
// a nil parent), ordered by title.
func (s *PageStore) ListChildren(parentID *uuid.UUID) ([]models.Page, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if parentID == nil {
		rows, err = s.db.Query(`SELECT ` + pageColumns + ` FROM pages WHERE parent_id IS NULL ORDER BY title`)
	} else {
		rows, err = s.db.Query(`SELECT `+pageColumns+` FROM pages WHERE parent_id = $1 ORDER BY title`, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()
	return collectPages(rows)
}

// Create inserts a new page and returns it. The slug derives from the title
// when absent, blog entries default their post date to now, blog indexes
// default their page size, and the page-tree nesting rules are enforced.
func (s *PageStore) Create(p *models.Page) (*models.Page, error) {
	s.normalizePage(p)
	if err := s.validateParent(p); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO pages (parent_id, type, title, slug, body, locale, owner_id,
		                   live, go_live_at, expire_at, posts_per_page, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+pageColumns,
		p.ParentID, p.Type, p.Title, p.Slug, p.Body, p.Locale, p.OwnerID,
		p.Live, p.GoLiveAt, p.ExpireAt, p.PostsPerPage, p.Date,
	)
	result, err := scanPage(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create page %q: %w", p.Slug, ErrDuplicate)
		}
		return nil, fmt.Errorf("create page: %w", err)
	}
	return result, nil
}

// Update modifies an existing page. Type is immutable; parent moves go
// through the same nesting validation as Create.
func (s *PageStore) Update(p *models.Page) error {
	s.normalizePage(p)
	if err := s.validateParent(p); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE pages SET
			parent_id = $1, title = $2, slug = $3, body = $4, locale = $5,
			owner_id = $6, go_live_at = $7, expire_at = $8,
			posts_per_page = $9, date = $10, updated_at = NOW()
		WHERE id = $11
	`, p.ParentID, p.Title, p.Slug, p.Body, p.Locale, p.OwnerID,
		p.GoLiveAt, p.ExpireAt, p.PostsPerPage, p.Date, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update page %q: %w", p.Slug, ErrDuplicate)
		}
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// Delete removes a page by ID. The subtree beneath it and its through-table
// rows cascade away.
func (s *PageStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	return nil
}

// Publish makes a page live. The first publication timestamp is set once
// and any pending scheduled go-live is cleared.
func (s *PageStore) Publish(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE pages SET
			live = TRUE,
			first_published_at = COALESCE(first_published_at, NOW()),
			go_live_at = NULL,
			updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("publish page: %w", err)
	}
	return nil
}

// Unpublish reverts a page to draft.
func (s *PageStore) Unpublish(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE pages SET live = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("unpublish page: %w", err)
	}
	return nil
}

// PublishDue makes every page whose scheduled go-live has passed live and
// returns their slugs for cache invalidation.
func (s *PageStore) PublishDue(now time.Time) ([]string, error) {
	rows, err := s.db.Query(`
		UPDATE pages SET
			live = TRUE,
			first_published_at = COALESCE(first_published_at, $1),
			go_live_at = NULL,
			updated_at = $1
		WHERE NOT live AND go_live_at IS NOT NULL AND go_live_at <= $1
		RETURNING slug
	`, now)
	if err != nil {
		return nil, fmt.Errorf("publish due pages: %w", err)
	}
	defer rows.Close()
	return collectSlugs(rows)
}

// ExpireDue unpublishes every live page whose expiry has passed and returns
// their slugs for cache invalidation.
func (s *PageStore) ExpireDue(now time.Time) ([]string, error) {
	rows, err := s.db.Query(`
		UPDATE pages SET live = FALSE, updated_at = $1
		WHERE live AND expire_at IS NOT NULL AND expire_at <= $1
		RETURNING slug
	`, now)
	if err != nil {
		return nil, fmt.Errorf("expire due pages: %w", err)
	}
	defer rows.Close()
	return collectSlugs(rows)
}

// PostFilter narrows a blog index listing. Zero values mean "no filter";
// filters stack independently.
type PostFilter struct {
	TagSlug      string
	CategorySlug string
	Locale       string // scopes the category lookup; defaults to "fr"
	AuthorID     *uuid.UUID
	Year         int
}

// postQuery assembles the WHERE clause and arguments shared by ListPosts
// and CountPosts. $1 is always the index ID.
func postQuery(indexID uuid.UUID, f PostFilter) (string, []any) {
	where := `p.parent_id = $1 AND p.type = 'blog_entry' AND p.live
		AND (p.expire_at IS NULL OR p.expire_at > NOW())`
	args := []any{indexID}

	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		where += ` AND EXISTS (
			SELECT 1 FROM page_tags pt
			JOIN tags t ON t.id = pt.tag_id
			WHERE pt.page_id = p.id AND t.slug = $` + strconv.Itoa(len(args)) + `)`
	}
	if f.CategorySlug != "" {
		locale := f.Locale
		if locale == "" {
			locale = DefaultLocale
		}
		args = append(args, f.CategorySlug, locale)
		where += ` AND EXISTS (
			SELECT 1 FROM page_categories pc
			JOIN categories c ON c.id = pc.category_id
			WHERE pc.page_id = p.id AND c.slug = $` + strconv.Itoa(len(args)-1) +
			` AND c.locale = $` + strconv.Itoa(len(args)) + `)`
	}
	if f.AuthorID != nil {
		args = append(args, *f.AuthorID)
		where += ` AND p.owner_id = $` + strconv.Itoa(len(args))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		where += ` AND EXTRACT(YEAR FROM p.date) = $` + strconv.Itoa(len(args))
	}

	return where, args
}

// CountPosts returns the number of live posts of an index matching the filter.
func (s *PageStore) CountPosts(indexID uuid.UUID, f PostFilter) (int, error) {
	where, args := postQuery(indexID, f)
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pages p WHERE `+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// ListPosts returns a page of live posts of an index matching the filter,
// ordered by post date descending, with tags, categories, and owners
// attached.
func (s *PageStore) ListPosts(indexID uuid.UUID, f PostFilter, limit, offset int) ([]models.Page, error) {
	where, args := postQuery(indexID, f)
	args = append(args, limit, offset)
	query := `SELECT ` + pageColumns + ` FROM pages p WHERE ` + where +
		` ORDER BY p.date DESC NULLS LAST, p.id
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts, err := collectPages(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachRelations(posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CategoryCounts aggregates category usage across an index's live posts,
// keeping counts at or above minCount, most used first.
func (s *PageStore) CategoryCounts(indexID uuid.UUID, minCount int) ([]models.CategoryCount, error) {
	if minCount < 1 {
		minCount = 1
	}
	rows, err := s.db.Query(`
		SELECT c.name, c.slug, COUNT(*) AS cnt
		FROM page_categories pc
		JOIN categories c ON c.id = pc.category_id
		JOIN pages p ON p.id = pc.page_id
		WHERE p.parent_id = $1 AND p.type = 'blog_entry' AND p.live
		  AND (p.expire_at IS NULL OR p.expire_at > NOW())
		GROUP BY c.name, c.slug
		HAVING COUNT(*) >= $2
		ORDER BY cnt DESC, c.name
	`, indexID, minCount)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Name, &c.Slug, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TagCounts aggregates tag usage across an index's live posts, keeping
// counts at or above minCount, most used first.
func (s *PageStore) TagCounts(indexID uuid.UUID, minCount int) ([]models.TagCount, error) {
	if minCount < 1 {
		minCount = 1
	}
	rows, err := s.db.Query(`
		SELECT t.name, t.slug, COUNT(*) AS cnt
		FROM page_tags pt
		JOIN tags t ON t.id = pt.tag_id
		JOIN pages p ON p.id = pt.page_id
		WHERE p.parent_id = $1 AND p.type = 'blog_entry' AND p.live
		  AND (p.expire_at IS NULL OR p.expire_at > NOW())
		GROUP BY t.name, t.slug
		HAVING COUNT(*) >= $2
		ORDER BY cnt DESC, t.name
	`, indexID, minCount)
	if err != nil {
		return nil, fmt.Errorf("tag counts: %w", err)
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

// SetTags replaces a page's tag set in a single transaction.
func (s *PageStore) SetTags(pageID uuid.UUID, tagIDs []uuid.UUID) error {
	return s.replaceJoinRows(`page_tags`, `tag_id`, pageID, tagIDs)
}

// SetCategories replaces a page's category set in a single transaction.
func (s *PageStore) SetCategories(pageID uuid.UUID, categoryIDs []uuid.UUID) error {
	return s.replaceJoinRows(`page_categories`, `category_id`, pageID, categoryIDs)
}

// replaceJoinRows deletes and re-inserts the through-table rows of a page.
// table and column are compile-time constants from the callers above.
func (s *PageStore) replaceJoinRows(table, column string, pageID uuid.UUID, ids []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM `+table+` WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for _, id := range ids {
		if _, err := tx.Exec(
			`INSERT INTO `+table+` (page_id, `+column+`) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pageID, id,
		); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// AttachRelations loads tags, categories, and the owner onto a single page.
func (s *PageStore) AttachRelations(p *models.Page) error {
	pages := []models.Page{*p}
	if err := s.attachRelations(pages); err != nil {
		return err
	}
	*p = pages[0]
	return nil
}

// attachRelations batch-loads tags, categories, and owners for a slice of
// pages.
func (s *PageStore) attachRelations(pages []models.Page) error {
	if len(pages) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(pages))
	ids := make([]string, len(pages))
	for i := range pages {
		index[pages[i].ID] = i
		ids[i] = pages[i].ID.String()
	}

	// Tags.
	rows, err := s.db.Query(`
		SELECT pt.page_id, t.id, t.name, t.slug, t.created_at
		FROM page_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.page_id = ANY($1::uuid[])
		ORDER BY t.name
	`, ids)
	if err != nil {
		return fmt.Errorf("load page tags: %w", err)
	}
	for rows.Next() {
		var pageID uuid.UUID
		var t models.Tag
		if err := rows.Scan(&pageID, &t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			rows.Close()
			return fmt.Errorf("scan page tag: %w", err)
		}
		i := index[pageID]
		pages[i].Tags = append(pages[i].Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Categories.
	rows, err = s.db.Query(`
		SELECT pc.page_id,
		       c.id, c.name, c.slug, c.description, c.parent_id,
		       c.locale, c.translation_key, c.created_at, c.updated_at
		FROM page_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.page_id = ANY($1::uuid[])
		ORDER BY c.name
	`, ids)
	if err != nil {
		return fmt.Errorf("load page categories: %w", err)
	}
	for rows.Next() {
		var pageID uuid.UUID
		var c models.Category
		if err := rows.Scan(
			&pageID, &c.ID, &c.Name, &c.Slug, &c.Description,
			&c.ParentID, &c.Locale, &c.TranslationKey, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			rows.Close()
			return fmt.Errorf("scan page category: %w", err)
		}
		i := index[pageID]
		pages[i].Categories = append(pages[i].Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// Owners.
	rows, err = s.db.Query(`
		SELECT p.id, u.id, u.email, u.first_name, u.last_name, u.role
		FROM pages p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = ANY($1::uuid[])
	`, ids)
	if err != nil {
		return fmt.Errorf("load page owners: %w", err)
	}
	for rows.Next() {
		var pageID uuid.UUID
		var u models.User
		if err := rows.Scan(&pageID, &u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role); err != nil {
			rows.Close()
			return fmt.Errorf("scan page owner: %w", err)
		}
		i := index[pageID]
		owner := u
		pages[i].Owner = &owner
	}
	rows.Close()
	return rows.Err()
}

// normalizePage fills derivable fields before a write.
func (s *PageStore) normalizePage(p *models.Page) {
	if p.Slug == "" {
		p.Slug = slug.Generate(p.Title)
	}
	if p.Locale == "" {
		p.Locale = DefaultLocale
	}
	if p.PostsPerPage == 0 {
		// Only meaningful for blog indexes, but the column is NOT NULL
		// with a range check, so every page carries the default.
		p.PostsPerPage = models.DefaultPostsPerPage
	}
	if p.Type == models.PageTypeBlogEntry && p.Date == nil {
		now := time.Now()
		p.Date = &now
	}
}

// validateParent enforces the page-tree nesting rules against the current
// parent row.
func (s *PageStore) validateParent(p *models.Page) error {
	if p.ParentID == nil {
		if !p.Type.AllowedAtRoot() {
			return fmt.Errorf("page type %s at root: %w", p.Type, ErrInvalidParent)
		}
		return nil
	}
	parent, err := s.FindByID(*p.ParentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return fmt.Errorf("page parent %s: %w", *p.ParentID, ErrParentNotFound)
	}
	if !parent.Type.AllowsChild(p.Type) {
		return fmt.Errorf("page type %s under %s: %w", p.Type, parent.Type, ErrInvalidParent)
	}
	return nil
}

// collectPages drains rows into a slice of pages.
func collectPages(rows *sql.Rows) ([]models.Page, error) {
	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// collectSlugs drains a single-column slug result set.
func collectSlugs(rows *sql.Rows) ([]string, error) {
	var slugs []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan slug: %w", err)
		}
		slugs = append(slugs, s)
	}
	return slugs, rows.Err()
}
