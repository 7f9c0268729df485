package scheduler

import (
	"database/sql"
	"os"
	"testing"
	"time"

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

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "gazette") +
		":" + envOr("POSTGRES_PASSWORD", "changeme") +
		"@" + envOr("POSTGRES_HOST", "localhost") +
		":" + envOr("POSTGRES_PORT", "5432") +
		"/" + envOr("POSTGRES_DB", "gazette") + "?sslmode=disable"

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
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSweepPublishesAndExpires(t *testing.T) {
	db := testDB(t)
	pages := store.NewPageStore(db)
	s := New(pages, nil)

	idx, err := pages.Create(&models.Page{
		Type:  models.PageTypeBlogIndex,
		Title: "Sweep",
		Slug:  "test-sweep-" + uuid.NewString()[:8],
		Live:  true,
	})
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM pages WHERE id = $1", idx.ID) })

	past := time.Now().Add(-time.Minute)
	due, err := pages.Create(&models.Page{
		ParentID: &idx.ID,
		Type:     models.PageTypeBlogEntry,
		Title:    "Due",
		Slug:     "due-" + uuid.NewString()[:8],
		GoLiveAt: &past,
	})
	if err != nil {
		t.Fatalf("create due entry: %v", err)
	}

	overdue, err := pages.Create(&models.Page{
		ParentID: &idx.ID,
		Type:     models.PageTypeBlogEntry,
		Title:    "Overdue",
		Slug:     "overdue-" + uuid.NewString()[:8],
		Live:     true,
		ExpireAt: &past,
	})
	if err != nil {
		t.Fatalf("create overdue entry: %v", err)
	}

	s.sweep()

	got, err := pages.FindByID(due.ID)
	if err != nil || got == nil {
		t.Fatalf("reload due entry: %v", err)
	}
	if !got.Live {
		t.Error("due entry should be live after the sweep")
	}
	if got.GoLiveAt != nil {
		t.Error("go_live_at should be cleared once applied")
	}
	if got.FirstPublishedAt == nil {
		t.Error("first_published_at should be set on scheduled publish")
	}

	got, err = pages.FindByID(overdue.ID)
	if err != nil || got == nil {
		t.Fatalf("reload overdue entry: %v", err)
	}
	if got.Live {
		t.Error("overdue entry should no longer be live after the sweep")
	}
}

func TestStartStop(t *testing.T) {
	db := testDB(t)
	s := New(store.NewPageStore(db), nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}
