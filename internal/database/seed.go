package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user, the default site, and a small blog (index, entries,
// categories, tags) to browse right away. It is a no-op when users already
// exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	// Default admin. 2FA is not enabled — they must set it up on first login.
	var adminID string
	err = tx.QueryRow(`
		INSERT INTO users (email, password_hash, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, "admin@gazette.local", string(hash), "Admin", "Gazette", "admin").Scan(&adminID)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO sites (hostname, site_name, is_default)
		VALUES ('localhost', 'Gazette', TRUE)
	`); err != nil {
		return fmt.Errorf("seed insert site: %w", err)
	}

	// A live blog index with a couple of published entries.
	var indexID string
	err = tx.QueryRow(`
		INSERT INTO pages (type, title, slug, live, first_published_at, owner_id)
		VALUES ('blog_index', 'Actualités', 'actualites', TRUE, NOW(), $1)
		RETURNING id
	`, adminID).Scan(&indexID)
	if err != nil {
		return fmt.Errorf("seed insert blog index: %w", err)
	}

	var catID string
	err = tx.QueryRow(`
		INSERT INTO categories (name, slug, description)
		VALUES ('Annonces', 'annonces', 'Annonces officielles')
		RETURNING id
	`).Scan(&catID)
	if err != nil {
		return fmt.Errorf("seed insert category: %w", err)
	}

	var tagID string
	err = tx.QueryRow(`
		INSERT INTO tags (name, slug) VALUES ('lancement', 'lancement')
		RETURNING id
	`).Scan(&tagID)
	if err != nil {
		return fmt.Errorf("seed insert tag: %w", err)
	}

	entries := []struct {
		title, slug, body string
		age               time.Duration
	}{
		{"Bienvenue sur Gazette", "bienvenue", "Le site est en ligne.", 48 * time.Hour},
		{"Premier billet", "premier-billet", "Un premier billet d'exemple.", 24 * time.Hour},
	}
	for _, e := range entries {
		var entryID string
		err = tx.QueryRow(`
			INSERT INTO pages (parent_id, type, title, slug, body, live, first_published_at, date, owner_id)
			VALUES ($1, 'blog_entry', $2, $3, $4, TRUE, NOW(), $5, $6)
			RETURNING id
		`, indexID, e.title, e.slug, e.body, time.Now().Add(-e.age), adminID).Scan(&entryID)
		if err != nil {
			return fmt.Errorf("seed insert entry %q: %w", e.slug, err)
		}
		if _, err := tx.Exec(`INSERT INTO page_tags (page_id, tag_id) VALUES ($1, $2)`, entryID, tagID); err != nil {
			return fmt.Errorf("seed tag entry: %w", err)
		}
		if _, err := tx.Exec(`INSERT INTO page_categories (page_id, category_id) VALUES ($1, $2)`, entryID, catID); err != nil {
			return fmt.Errorf("seed categorize entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin user and sample blog",
		"email", "admin@gazette.local",
		"password", "admin",
	)

	return nil
}
