package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gazette/internal/cache"
	"gazette/internal/markdown"
	"gazette/internal/models"
	"gazette/internal/paginator"
	"gazette/internal/store"
)

// Public groups the handlers for the public read API. Responses are
// cached in Valkey; the cache is checked before any database work and
// populated on the way out.
type Public struct {
	pages      *store.PageStore
	categories *store.CategoryStore
	tags       *store.TagStore
	users      *store.UserStore
	pageCache  *cache.PageCache
}

// NewPublic creates a new Public handler group. pageCache may be nil
// when Valkey is not configured; responses are then always computed.
func NewPublic(pages *store.PageStore, categories *store.CategoryStore, tags *store.TagStore, users *store.UserStore, pageCache *cache.PageCache) *Public {
	return &Public{
		pages:      pages,
		categories: categories,
		tags:       tags,
		users:      users,
		pageCache:  pageCache,
	}
}

// paginatorJSON describes the pagination state of a listing response.
type paginatorJSON struct {
	Page        int  `json:"page"`
	NumPages    int  `json:"num_pages"`
	Count       int  `json:"count"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// authorJSON is the public view of a post author.
type authorJSON struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// taxonomyJSON is the public view of a tag or category reference.
type taxonomyJSON struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// postJSON is the public view of a blog entry in a listing.
type postJSON struct {
	ID         uuid.UUID      `json:"id"`
	Slug       string         `json:"slug"`
	Title      string         `json:"title"`
	Date       *time.Time     `json:"date"`
	Author     *authorJSON    `json:"author,omitempty"`
	Tags       []taxonomyJSON `json:"tags"`
	Categories []taxonomyJSON `json:"categories"`
}

// listingResponse is the blog listing context.
type listingResponse struct {
	Index      taxonomyJSON      `json:"index"`
	Posts      []postJSON        `json:"posts"`
	Paginator  paginatorJSON     `json:"paginator"`
	Filters    map[string]string `json:"filters"`
	Breadcrumb *Crumb            `json:"breadcrumb,omitempty"`
}

// entryResponse is the blog entry detail.
type entryResponse struct {
	postJSON
	BodyHTML string `json:"body_html"`
}

// countJSON is one row of a tag or category aggregation.
type countJSON struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Listing serves the blog index listing with filters, pagination, and
// the filter breadcrumb. Route variants /year/{year} and
// /author/{authorID} feed the same handler.
func (p *Public) Listing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	indexSlug := chi.URLParam(r, "blog")

	cacheKey := listingCacheKey(r, indexSlug)
	if p.pageCache != nil {
		if cached, ok := p.pageCache.Get(ctx, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	index, err := p.pages.FindIndexBySlug(indexSlug)
	if err != nil {
		slog.Error("find blog index failed", "error", err, "slug", indexSlug)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if index == nil || !index.IsVisible(time.Now()) {
		jsonError(w, http.StatusNotFound, "blog not found")
		return
	}

	filter := store.PostFilter{Locale: index.Locale}
	filters := map[string]string{}

	// Resolve each filter up front so unknown values are a 404, not an
	// empty listing.
	var tag *models.Tag
	if tagSlug := r.URL.Query().Get("tag"); tagSlug != "" {
		tag, err = p.tags.FindBySlug(tagSlug)
		if err != nil {
			slog.Error("find tag failed", "error", err, "slug", tagSlug)
			jsonError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if tag == nil {
			jsonError(w, http.StatusNotFound, "tag not found")
			return
		}
		filter.TagSlug = tag.Slug
		filters["tag"] = tag.Slug
	}

	var category *models.Category
	if catSlug := r.URL.Query().Get("category"); catSlug != "" {
		category, err = p.categories.FindBySlug(catSlug, index.Locale)
		if err != nil {
			slog.Error("find category failed", "error", err, "slug", catSlug)
			jsonError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if category == nil {
			jsonError(w, http.StatusNotFound, "category not found")
			return
		}
		filter.CategorySlug = category.Slug
		filters["category"] = category.Slug
	}

	var author *models.User
	if authorParam := chi.URLParam(r, "authorID"); authorParam != "" {
		authorID, err := uuid.Parse(authorParam)
		if err != nil {
			jsonError(w, http.StatusNotFound, "author not found")
			return
		}
		author, err = p.users.FindByID(authorID)
		if err != nil {
			slog.Error("find author failed", "error", err, "id", authorID)
			jsonError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if author == nil {
			jsonError(w, http.StatusNotFound, "author not found")
			return
		}
		filter.AuthorID = &author.ID
		filters["author"] = author.ID.String()
	}

	if yearParam := chi.URLParam(r, "year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil || year < 1 {
			jsonError(w, http.StatusNotFound, "invalid year")
			return
		}
		filter.Year = year
		filters["year"] = yearParam
	}

	count, err := p.pages.CountPosts(index.ID, filter)
	if err != nil {
		slog.Error("count posts failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// A malformed page number falls back to page 1, an out-of-range one
	// to the last page. Listing pagination never errors.
	pg := paginator.New(count, index.PostsPerPage).Page(r.URL.Query().Get("page"))

	posts, err := p.pages.ListPosts(index.ID, filter, pg.Limit, pg.Offset)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := listingResponse{
		Index:      taxonomyJSON{Name: index.Title, Slug: index.Slug},
		Posts:      make([]postJSON, 0, len(posts)),
		Paginator:  toPaginatorJSON(pg),
		Filters:    filters,
		Breadcrumb: filterCrumb(index.Slug, tag, category, author),
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, toPostJSON(&posts[i]))
	}

	p.respond(ctx, w, cacheKey, resp)
}

// Categories serves the category usage aggregation of an index.
func (p *Public) Categories(w http.ResponseWriter, r *http.Request) {
	p.aggregation(w, r, func(indexID uuid.UUID, minCount int) ([]countJSON, error) {
		counts, err := p.pages.CategoryCounts(indexID, minCount)
		if err != nil {
			return nil, err
		}
		out := make([]countJSON, 0, len(counts))
		for _, c := range counts {
			out = append(out, countJSON{Name: c.Name, Slug: c.Slug, Count: c.Count})
		}
		return out, nil
	})
}

// Tags serves the tag usage aggregation of an index.
func (p *Public) Tags(w http.ResponseWriter, r *http.Request) {
	p.aggregation(w, r, func(indexID uuid.UUID, minCount int) ([]countJSON, error) {
		counts, err := p.pages.TagCounts(indexID, minCount)
		if err != nil {
			return nil, err
		}
		out := make([]countJSON, 0, len(counts))
		for _, c := range counts {
			out = append(out, countJSON{Name: c.Name, Slug: c.Slug, Count: c.Count})
		}
		return out, nil
	})
}

// aggregation factors the shared index lookup, min_count parsing, and
// caching of the two aggregation endpoints.
func (p *Public) aggregation(w http.ResponseWriter, r *http.Request, load func(uuid.UUID, int) ([]countJSON, error)) {
	ctx := r.Context()
	indexSlug := chi.URLParam(r, "blog")

	cacheKey := listingCacheKey(r, indexSlug)
	if p.pageCache != nil {
		if cached, ok := p.pageCache.Get(ctx, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	index, err := p.pages.FindIndexBySlug(indexSlug)
	if err != nil {
		slog.Error("find blog index failed", "error", err, "slug", indexSlug)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if index == nil || !index.IsVisible(time.Now()) {
		jsonError(w, http.StatusNotFound, "blog not found")
		return
	}

	minCount := 1
	if raw := r.URL.Query().Get("min_count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 1 {
			minCount = n
		}
	}

	counts, err := load(index.ID, minCount)
	if err != nil {
		slog.Error("aggregation failed", "error", err, "index", indexSlug)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.respond(ctx, w, cacheKey, map[string]any{"items": counts})
}

// Entry serves a live blog entry with its relations and the body
// rendered from markdown to HTML.
func (p *Public) Entry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	indexSlug := chi.URLParam(r, "blog")
	entrySlug := chi.URLParam(r, "slug")

	cacheKey := cache.EntryKey(indexSlug, entrySlug)
	if p.pageCache != nil {
		if cached, ok := p.pageCache.Get(ctx, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	index, err := p.pages.FindIndexBySlug(indexSlug)
	if err != nil {
		slog.Error("find blog index failed", "error", err, "slug", indexSlug)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if index == nil || !index.IsVisible(time.Now()) {
		jsonError(w, http.StatusNotFound, "blog not found")
		return
	}

	entry, err := p.pages.FindEntry(index.ID, entrySlug)
	if err != nil {
		slog.Error("find blog entry failed", "error", err, "slug", entrySlug)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if entry == nil || !entry.IsVisible(time.Now()) {
		jsonError(w, http.StatusNotFound, "entry not found")
		return
	}

	if err := p.pages.AttachRelations(entry); err != nil {
		slog.Error("attach entry relations failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	bodyHTML, err := markdown.ToHTML(entry.Body)
	if err != nil {
		slog.Error("render entry body failed", "error", err, "slug", entrySlug)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	p.respond(ctx, w, cacheKey, entryResponse{
		postJSON: toPostJSON(entry),
		BodyHTML: bodyHTML,
	})
}

// respond serializes v, stores it in the page cache, and writes it out.
func (p *Public) respond(ctx context.Context, w http.ResponseWriter, cacheKey string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("json marshal failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p.pageCache != nil {
		p.pageCache.Set(ctx, cacheKey, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// listingCacheKey derives the cache key from the request path under the
// index slug plus the canonical query string, so InvalidateIndex evicts
// every variant with one prefix scan.
func listingCacheKey(r *http.Request, indexSlug string) string {
	suffix := strings.TrimPrefix(r.URL.Path, "/api/blog/")
	if suffix == "" {
		suffix = indexSlug
	}
	return cache.ListingKey(suffix, r.URL.Query())
}

func toPaginatorJSON(pg paginator.Page) paginatorJSON {
	return paginatorJSON{
		Page:        pg.Number,
		NumPages:    pg.NumPages,
		Count:       pg.Count,
		PerPage:     pg.PerPage,
		HasNext:     pg.HasNext(),
		HasPrevious: pg.HasPrevious(),
	}
}

func toPostJSON(p *models.Page) postJSON {
	out := postJSON{
		ID:         p.ID,
		Slug:       p.Slug,
		Title:      p.Title,
		Date:       p.Date,
		Tags:       make([]taxonomyJSON, 0, len(p.Tags)),
		Categories: make([]taxonomyJSON, 0, len(p.Categories)),
	}
	if p.Owner != nil {
		out.Author = &authorJSON{ID: p.Owner.ID, Name: p.Owner.FullName()}
	}
	for _, t := range p.Tags {
		out.Tags = append(out.Tags, taxonomyJSON{Name: t.Name, Slug: t.Slug})
	}
	for _, c := range p.Categories {
		out.Categories = append(out.Categories, taxonomyJSON{Name: c.Name, Slug: c.Slug})
	}
	return out
}
