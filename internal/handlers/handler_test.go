// handler_test.go provides shared helpers for handler integration
// tests: a migrated test database and a router wired like production.
// Tests are skipped if PostgreSQL is not available.
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"gazette/internal/database"
	"gazette/internal/models"
	"gazette/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "gazette")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "gazette")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB opens the test database and runs migrations, skipping the test
// when PostgreSQL is unreachable.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// publicRouter builds the public API routes the way the production
// router does, without a page cache so responses always hit the DB.
func publicRouter(db *sql.DB) chi.Router {
	public := NewPublic(
		store.NewPageStore(db),
		store.NewCategoryStore(db),
		store.NewTagStore(db),
		store.NewUserStore(db),
		nil,
	)

	r := chi.NewRouter()
	r.Route("/api/blog/{blog}", func(r chi.Router) {
		r.Get("/", public.Listing)
		r.Get("/categories", public.Categories)
		r.Get("/tags", public.Tags)
		r.Get("/year/{year}", public.Listing)
		r.Get("/author/{authorID}", public.Listing)
		r.Get("/{slug}", public.Entry)
	})
	return r
}

// getJSON performs a GET against the router and decodes the JSON body.
func getJSON(t *testing.T, r chi.Router, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if out != nil && rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v (body %q)", path, err, rr.Body.String())
		}
	}
	return rr.Code
}

// seedIndex creates a live blog index and registers its removal; the
// entries beneath it cascade away.
func seedIndex(t *testing.T, db *sql.DB, postsPerPage int) *models.Page {
	t.Helper()
	s := store.NewPageStore(db)
	idx, err := s.Create(&models.Page{
		Type:         models.PageTypeBlogIndex,
		Title:        "Actualités",
		Slug:         "test-api-" + uuid.NewString()[:8],
		Live:         true,
		PostsPerPage: postsPerPage,
	})
	if err != nil {
		t.Fatalf("seed blog index: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM pages WHERE id = $1", idx.ID) })
	return idx
}

// seedEntry creates a live entry with optional tag names and category
// ids under the index.
func seedEntry(t *testing.T, db *sql.DB, idx *models.Page, title, body string, date time.Time, tagNames []string, categoryIDs []uuid.UUID) *models.Page {
	t.Helper()
	pages := store.NewPageStore(db)
	tags := store.NewTagStore(db)

	entry, err := pages.Create(&models.Page{
		ParentID: &idx.ID,
		Type:     models.PageTypeBlogEntry,
		Title:    title,
		Slug:     title + "-" + uuid.NewString()[:8],
		Body:     body,
		Live:     true,
		Date:     &date,
	})
	if err != nil {
		t.Fatalf("seed entry %q: %v", title, err)
	}

	var tagIDs []uuid.UUID
	for _, name := range tagNames {
		tag, err := tags.GetOrCreate(name)
		if err != nil {
			t.Fatalf("seed tag %q: %v", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
		slug := tag.Slug
		t.Cleanup(func() { db.Exec("DELETE FROM tags WHERE slug = $1", slug) })
	}
	if len(tagIDs) > 0 {
		if err := pages.SetTags(entry.ID, tagIDs); err != nil {
			t.Fatalf("set tags: %v", err)
		}
	}
	if len(categoryIDs) > 0 {
		if err := pages.SetCategories(entry.ID, categoryIDs); err != nil {
			t.Fatalf("set categories: %v", err)
		}
	}
	return entry
}
