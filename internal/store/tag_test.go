package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"gazette/internal/models"
)

func TestTagStoreGetOrCreate(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	base := "Breaking News " + uuid.NewString()[:8]
	first, err := s.GetOrCreate(base)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	t.Cleanup(func() { cleanTags(t, db, first.Slug) })

	if first.Name != base {
		t.Errorf("name: got %q, want %q", first.Name, base)
	}

	second, err := s.GetOrCreate("  " + base + "  ")
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("same name should reuse the tag: got %s, want %s", second.ID, first.ID)
	}
	if second.Name != first.Name {
		t.Errorf("existing name kept: got %q, want %q", second.Name, first.Name)
	}
}

func TestTagStoreGetOrCreateCaseInsensitive(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	suffix := uuid.NewString()[:8]
	lower, err := s.GetOrCreate("golang " + suffix)
	if err != nil {
		t.Fatalf("GetOrCreate lower: %v", err)
	}
	t.Cleanup(func() { cleanTags(t, db, lower.Slug) })

	upper, err := s.GetOrCreate("Golang " + suffix)
	if err != nil {
		t.Fatalf("GetOrCreate upper: %v", err)
	}
	if upper.ID != lower.ID {
		t.Error("case variants should resolve to the same tag")
	}
	if upper.Name != lower.Name {
		t.Errorf("original casing kept: got %q, want %q", upper.Name, lower.Name)
	}
}

func TestTagStoreGetOrCreateEmpty(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	for _, name := range []string{"", "   ", "!!!"} {
		if _, err := s.GetOrCreate(name); err == nil {
			t.Errorf("GetOrCreate(%q) should fail", name)
		}
	}
}

func TestTagStoreFindBySlug(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	created, err := s.GetOrCreate("Lookup " + uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	t.Cleanup(func() { cleanTags(t, db, created.Slug) })

	found, err := s.FindBySlug(created.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("got %+v, want tag %s", found, created.ID)
	}

	missing, err := s.FindBySlug("no-such-tag-" + uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("FindBySlug missing: %v", err)
	}
	if missing != nil {
		t.Errorf("got %+v, want nil for unknown slug", missing)
	}
}

func TestTagStoreDeleteDetachesPages(t *testing.T) {
	db := testDB(t)
	tags := NewTagStore(db)
	pages := NewPageStore(db)
	idx := testBlogIndex(t, db, 10)

	tag, err := tags.GetOrCreate("Doomed " + uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	entry, err := pages.Create(&models.Page{
		ParentID: &idx.ID,
		Type:     models.PageTypeBlogEntry,
		Title:    "Tagged entry",
		Slug:     "test-tagdel-" + uuid.NewString()[:8],
		Live:     true,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := pages.SetTags(entry.ID, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("SetTags: %v", err)
	}

	if err := tags.Delete(tag.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := pages.AttachRelations(entry); err != nil {
		t.Fatalf("AttachRelations: %v", err)
	}
	if len(entry.Tags) != 0 {
		t.Errorf("through rows should cascade away, got %+v", entry.Tags)
	}

	gone, err := tags.FindBySlug(tag.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if gone != nil {
		t.Error("deleted tag should be gone")
	}
}

func TestTagStoreDuplicateErrorSentinel(t *testing.T) {
	// A direct insert collides where GetOrCreate would not; keeps the
	// ErrDuplicate mapping honest.
	db := testDB(t)

	slugVal := "dup-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanTags(t, db, slugVal) })

	if _, err := db.Exec(`INSERT INTO tags (name, slug) VALUES ($1, $1)`, slugVal); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := db.Exec(`INSERT INTO tags (name, slug) VALUES ($1, $1)`, slugVal)
	if err == nil {
		t.Fatal("second insert should violate the slug unique constraint")
	}
	if !isUniqueViolation(err) {
		t.Errorf("isUniqueViolation(%v) = false, want true", err)
	}
	if errors.Is(err, ErrDuplicate) {
		t.Error("raw driver error should not already be ErrDuplicate")
	}
}
