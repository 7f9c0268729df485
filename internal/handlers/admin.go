package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gazette/internal/cache"
	"gazette/internal/middleware"
	"gazette/internal/models"
	"gazette/internal/store"
)

// Admin groups the authenticated JSON API handlers and their
// dependencies.
type Admin struct {
	pages      *store.PageStore
	categories *store.CategoryStore
	tags       *store.TagStore
	sites      *store.SiteStore
	users      *store.UserStore
	pageCache  *cache.PageCache
}

// NewAdmin creates a new Admin handler group. pageCache may be nil when
// Valkey is not configured; invalidation is then a no-op.
func NewAdmin(pages *store.PageStore, categories *store.CategoryStore, tags *store.TagStore, sites *store.SiteStore, users *store.UserStore, pageCache *cache.PageCache) *Admin {
	return &Admin{
		pages:      pages,
		categories: categories,
		tags:       tags,
		sites:      sites,
		users:      users,
		pageCache:  pageCache,
	}
}

// pageRequest is the JSON body for page create and update.
type pageRequest struct {
	ParentID     *uuid.UUID `json:"parent_id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Body         string     `json:"body"`
	Locale       string     `json:"locale"`
	PostsPerPage int        `json:"posts_per_page"`
	Date         *time.Time `json:"date"`
	GoLiveAt     *time.Time `json:"go_live_at"`
	ExpireAt     *time.Time `json:"expire_at"`
	Tags         []string   `json:"tags"`       // tag names, get-or-create
	Categories   []string   `json:"categories"` // category slugs
}

// PagesList lists the direct children of a page, or the root pages when
// no parent is given.
func (a *Admin) PagesList(w http.ResponseWriter, r *http.Request) {
	var parentID *uuid.UUID
	if raw := r.URL.Query().Get("parent"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid parent id")
			return
		}
		parentID = &id
	}

	pages, err := a.pages.ListChildren(parentID)
	if err != nil {
		slog.Error("list pages failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": pages})
}

// PageGet returns a page with its relations.
func (a *Admin) PageGet(w http.ResponseWriter, r *http.Request) {
	page := a.findPage(w, r)
	if page == nil {
		return
	}
	if err := a.pages.AttachRelations(page); err != nil {
		slog.Error("attach page relations failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// PageCreate creates a draft page. Entry tag and category assignments
// are applied after the page row exists.
func (a *Admin) PageCreate(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	pageType := models.PageType(req.Type)
	if msg := validatePage(pageType, req.Title, req.Slug, req.Body, req.PostsPerPage); msg != "" {
		jsonError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	page := &models.Page{
		ParentID:     req.ParentID,
		Type:         pageType,
		Title:        req.Title,
		Slug:         req.Slug,
		Body:         req.Body,
		Locale:       req.Locale,
		PostsPerPage: req.PostsPerPage,
		Date:         req.Date,
		GoLiveAt:     req.GoLiveAt,
		ExpireAt:     req.ExpireAt,
	}
	if sess != nil {
		page.OwnerID = &sess.UserID
	}

	created, err := a.pages.Create(page)
	if err != nil {
		a.writePageError(w, err)
		return
	}

	if msg := a.assignTaxonomy(created, req.Tags, req.Categories); msg != "" {
		jsonError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// PageUpdate modifies a page and replaces its taxonomy assignments.
func (a *Admin) PageUpdate(w http.ResponseWriter, r *http.Request) {
	page := a.findPage(w, r)
	if page == nil {
		return
	}

	var req pageRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validatePage(page.Type, req.Title, req.Slug, req.Body, req.PostsPerPage); msg != "" {
		jsonError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	page.ParentID = req.ParentID
	page.Title = req.Title
	page.Slug = req.Slug
	page.Body = req.Body
	page.Locale = req.Locale
	page.PostsPerPage = req.PostsPerPage
	page.Date = req.Date
	page.GoLiveAt = req.GoLiveAt
	page.ExpireAt = req.ExpireAt

	if err := a.pages.Update(page); err != nil {
		a.writePageError(w, err)
		return
	}

	if msg := a.assignTaxonomy(page, req.Tags, req.Categories); msg != "" {
		jsonError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	a.invalidateFor(r.Context(), page)
	writeJSON(w, http.StatusOK, page)
}

// PageDelete removes a page; the subtree and through-table rows cascade.
func (a *Admin) PageDelete(w http.ResponseWriter, r *http.Request) {
	page := a.findPage(w, r)
	if page == nil {
		return
	}
	if err := a.pages.Delete(page.ID); err != nil {
		slog.Error("delete page failed", "error", err, "id", page.ID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	a.invalidateFor(r.Context(), page)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PagePublish makes a page live immediately.
func (a *Admin) PagePublish(w http.ResponseWriter, r *http.Request) {
	page := a.findPage(w, r)
	if page == nil {
		return
	}
	if err := a.pages.Publish(page.ID); err != nil {
		slog.Error("publish page failed", "error", err, "id", page.ID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	a.invalidateFor(r.Context(), page)
	writeJSON(w, http.StatusOK, map[string]string{"status": "published"})
}

// PageUnpublish reverts a page to draft.
func (a *Admin) PageUnpublish(w http.ResponseWriter, r *http.Request) {
	page := a.findPage(w, r)
	if page == nil {
		return
	}
	if err := a.pages.Unpublish(page.ID); err != nil {
		slog.Error("unpublish page failed", "error", err, "id", page.ID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	a.invalidateFor(r.Context(), page)
	writeJSON(w, http.StatusOK, map[string]string{"status": "unpublished"})
}

// findPage resolves the {id} route param. Writes the error response and
// returns nil when the page cannot be served.
func (a *Admin) findPage(w http.ResponseWriter, r *http.Request) *models.Page {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid page id")
		return nil
	}
	page, err := a.pages.FindByID(id)
	if err != nil {
		slog.Error("find page failed", "error", err, "id", id)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return nil
	}
	if page == nil {
		jsonError(w, http.StatusNotFound, "page not found")
		return nil
	}
	return page
}

// assignTaxonomy replaces a page's tags (get-or-create by name) and
// categories (matched by slug in the page's locale). Returns a
// validation message on unknown categories.
func (a *Admin) assignTaxonomy(page *models.Page, tagNames, categorySlugs []string) string {
	if tagNames != nil {
		tagIDs := make([]uuid.UUID, 0, len(tagNames))
		for _, name := range tagNames {
			tag, err := a.tags.GetOrCreate(name)
			if err != nil {
				return "Invalid tag name: " + name
			}
			tagIDs = append(tagIDs, tag.ID)
		}
		if err := a.pages.SetTags(page.ID, tagIDs); err != nil {
			slog.Error("set page tags failed", "error", err, "page", page.ID)
			return "Could not assign tags."
		}
	}

	if categorySlugs != nil {
		catIDs := make([]uuid.UUID, 0, len(categorySlugs))
		for _, slug := range categorySlugs {
			cat, err := a.categories.FindBySlug(slug, page.Locale)
			if err != nil || cat == nil {
				return "Unknown category: " + slug
			}
			catIDs = append(catIDs, cat.ID)
		}
		if err := a.pages.SetCategories(page.ID, catIDs); err != nil {
			slog.Error("set page categories failed", "error", err, "page", page.ID)
			return "Could not assign categories."
		}
	}

	return ""
}

// writePageError maps store errors from page writes onto HTTP statuses.
func (a *Admin) writePageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		jsonError(w, http.StatusConflict, "a sibling page already uses this slug")
	case errors.Is(err, store.ErrParentNotFound):
		jsonError(w, http.StatusUnprocessableEntity, "parent page does not exist")
	case errors.Is(err, store.ErrInvalidParent):
		jsonError(w, http.StatusUnprocessableEntity, "page type not allowed under this parent")
	default:
		slog.Error("page write failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
	}
}

// invalidateFor evicts the cached public responses a page change can
// affect: the index subtree for indexes and entries, everything for
// content pages (they may appear in any navigation context).
func (a *Admin) invalidateFor(ctx context.Context, page *models.Page) {
	if a.pageCache == nil {
		return
	}
	switch page.Type {
	case models.PageTypeBlogIndex:
		a.pageCache.InvalidateIndex(ctx, page.Slug)
	case models.PageTypeBlogEntry:
		if page.ParentID != nil {
			if parent, err := a.pages.FindByID(*page.ParentID); err == nil && parent != nil {
				a.pageCache.InvalidateIndex(ctx, parent.Slug)
				return
			}
		}
		a.pageCache.InvalidateAll(ctx)
	default:
		a.pageCache.InvalidateAll(ctx)
	}
}
