package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gazette/internal/models"
	"gazette/internal/store"
)

// categoryRequest is the JSON body for category create and update.
type categoryRequest struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
	Locale      string     `json:"locale"`
}

// CategoriesList lists all categories of a locale, ordered by name.
func (a *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = store.DefaultLocale
	}
	cats, err := a.categories.List(locale)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": cats})
}

// CategoryGet returns a single category.
func (a *Admin) CategoryGet(w http.ResponseWriter, r *http.Request) {
	cat := a.findCategory(w, r)
	if cat == nil {
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// CategoryCreate creates a category. The slug derives from the name
// when absent; the parent rules reject self-parenting and two-level
// cycles.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateCategory(req.Name, req.Slug, req.Description); msg != "" {
		jsonError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	created, err := a.categories.Create(&models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		Locale:      req.Locale,
	})
	if err != nil {
		a.writeCategoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// CategoryUpdate modifies a category under the same parent rules as
// creation.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	cat := a.findCategory(w, r)
	if cat == nil {
		return
	}

	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validateCategory(req.Name, req.Slug, req.Description); msg != "" {
		jsonError(w, http.StatusUnprocessableEntity, msg)
		return
	}

	cat.Name = req.Name
	cat.Slug = req.Slug
	cat.Description = req.Description
	cat.ParentID = req.ParentID
	if req.Locale != "" {
		cat.Locale = req.Locale
	}

	if err := a.categories.Update(cat); err != nil {
		a.writeCategoryError(w, err)
		return
	}
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, cat)
}

// CategoryDelete removes a category. Children re-parent to null; pages
// lose the assignment via the through-table cascade.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	cat := a.findCategory(w, r)
	if cat == nil {
		return
	}
	if err := a.categories.Delete(cat.ID); err != nil {
		slog.Error("delete category failed", "error", err, "id", cat.ID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// TagsList lists all tags with their site-wide usage counts.
func (a *Admin) TagsList(w http.ResponseWriter, r *http.Request) {
	counts, err := a.tags.ListWithCounts()
	if err != nil {
		slog.Error("list tags failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": counts})
}

// TagDelete removes a tag; its page assignments cascade away.
func (a *Admin) TagDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid tag id")
		return
	}
	if err := a.tags.Delete(id); err != nil {
		slog.Error("delete tag failed", "error", err, "id", id)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *Admin) findCategory(w http.ResponseWriter, r *http.Request) *models.Category {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return nil
	}
	cat, err := a.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err, "id", id)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return nil
	}
	if cat == nil {
		jsonError(w, http.StatusNotFound, "category not found")
		return nil
	}
	return cat
}

// writeCategoryError maps store errors from category writes onto HTTP
// statuses. Hierarchy violations are validation errors, not conflicts.
func (a *Admin) writeCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrCategoryOwnParent):
		jsonError(w, http.StatusUnprocessableEntity, "a category cannot be its own parent")
	case errors.Is(err, models.ErrCategoryCircularParent):
		jsonError(w, http.StatusUnprocessableEntity, "category parenting would create a cycle")
	case errors.Is(err, store.ErrParentNotFound):
		jsonError(w, http.StatusUnprocessableEntity, "parent category does not exist")
	case errors.Is(err, store.ErrDuplicate):
		jsonError(w, http.StatusConflict, "a category with this name or slug already exists in this locale")
	default:
		slog.Error("category write failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
	}
}
