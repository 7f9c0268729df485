// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"gazette/internal/database"
	"gazette/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "gazette")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "gazette")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
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

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testAuthor creates a throwaway author for page ownership and registers
// its removal.
func testAuthor(t *testing.T, db *sql.DB) *models.User {
	t.Helper()
	email := "author-" + uuid.NewString()[:8] + "@test.local"
	u, err := NewUserStore(db).Create(email, "secret", "Test", "Author", models.RoleAuthor)
	if err != nil {
		t.Fatalf("create test author: %v", err)
	}
	t.Cleanup(func() { cleanUsers(t, db, email) })
	return u
}

// testBlogIndex creates a live blog index with a unique slug and registers
// its removal (entries beneath it cascade away).
func testBlogIndex(t *testing.T, db *sql.DB, postsPerPage int) *models.Page {
	t.Helper()
	s := NewPageStore(db)
	indexSlug := "test-blog-" + uuid.NewString()[:8]
	idx, err := s.Create(&models.Page{
		Type:         models.PageTypeBlogIndex,
		Title:        "Test Blog",
		Slug:         indexSlug,
		Live:         true,
		PostsPerPage: postsPerPage,
	})
	if err != nil {
		t.Fatalf("create test blog index: %v", err)
	}
	t.Cleanup(func() { cleanPages(t, db, indexSlug) })
	return idx
}

// cleanPages removes test pages by slug. Call in t.Cleanup().
func cleanPages(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM pages WHERE slug = $1", s)
	}
}

// cleanCategories removes test categories by slug. Call in t.Cleanup().
func cleanCategories(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM categories WHERE slug = $1", s)
	}
}

// cleanTags removes test tags by slug. Call in t.Cleanup().
func cleanTags(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM tags WHERE slug = $1", s)
	}
}

// cleanUsers removes test users by email. Call in t.Cleanup().
func cleanUsers(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM users WHERE email = $1", email)
	}
}

// cleanSites removes test sites by hostname. Call in t.Cleanup().
func cleanSites(t *testing.T, db *sql.DB, hostnames ...string) {
	t.Helper()
	for _, h := range hostnames {
		db.Exec("DELETE FROM sites WHERE hostname = $1", h)
	}
}
