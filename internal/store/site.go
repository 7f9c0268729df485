package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"gazette/internal/models"
)

// SiteStore manages sites and their singleton settings records.
type SiteStore struct {
	db *sql.DB
}

// NewSiteStore returns a new SiteStore.
func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

const siteColumns = `id, hostname, site_name, is_default, created_at, updated_at`

func scanSite(scanner interface{ Scan(...any) error }) (*models.Site, error) {
	var site models.Site
	err := scanner.Scan(
		&site.ID, &site.Hostname, &site.SiteName, &site.IsDefault,
		&site.CreatedAt, &site.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

// List returns all sites ordered by hostname.
func (s *SiteStore) List() ([]models.Site, error) {
	rows, err := s.db.Query(`SELECT ` + siteColumns + ` FROM sites ORDER BY hostname`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []models.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, *site)
	}
	return sites, rows.Err()
}

// DefaultSite returns the site marked as default, or nil if none exists.
func (s *SiteStore) DefaultSite() (*models.Site, error) {
	row := s.db.QueryRow(`SELECT ` + siteColumns + ` FROM sites WHERE is_default LIMIT 1`)
	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find default site: %w", err)
	}
	return site, nil
}

// FindByHostname retrieves a site by hostname. Returns nil if not found.
func (s *SiteStore) FindByHostname(hostname string) (*models.Site, error) {
	row := s.db.QueryRow(`SELECT `+siteColumns+` FROM sites WHERE hostname = $1`, hostname)
	site, err := scanSite(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site by hostname: %w", err)
	}
	return site, nil
}

// Create inserts a new site and returns it.
func (s *SiteStore) Create(site *models.Site) (*models.Site, error) {
	row := s.db.QueryRow(`
		INSERT INTO sites (hostname, site_name, is_default)
		VALUES ($1, $2, $3)
		RETURNING `+siteColumns,
		site.Hostname, site.SiteName, site.IsDefault,
	)
	result, err := scanSite(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create site %q: %w", site.Hostname, ErrDuplicate)
		}
		return nil, fmt.Errorf("create site: %w", err)
	}
	return result, nil
}

// AnalyticsFor returns a site's analytics settings. A site with no stored
// record yields the empty defaults rather than an error.
func (s *SiteStore) AnalyticsFor(siteID uuid.UUID) (models.AnalyticsSettings, error) {
	a := models.AnalyticsSettings{SiteID: siteID}
	err := s.db.QueryRow(`
		SELECT head_scripts, body_scripts, updated_at
		FROM analytics_settings WHERE site_id = $1
	`, siteID).Scan(&a.HeadScripts, &a.BodyScripts, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return a, nil
	}
	if err != nil {
		return a, fmt.Errorf("analytics settings: %w", err)
	}
	return a, nil
}

// SetAnalytics upserts a site's analytics settings.
func (s *SiteStore) SetAnalytics(a models.AnalyticsSettings) error {
	_, err := s.db.Exec(`
		INSERT INTO analytics_settings (site_id, head_scripts, body_scripts, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (site_id) DO UPDATE SET
			head_scripts = EXCLUDED.head_scripts,
			body_scripts = EXCLUDED.body_scripts,
			updated_at = EXCLUDED.updated_at
	`, a.SiteID, a.HeadScripts, a.BodyScripts)
	if err != nil {
		return fmt.Errorf("set analytics settings: %w", err)
	}
	return nil
}

// ConfigFor returns a site's branding configuration. A site with no stored
// record yields the institutional defaults.
func (s *SiteStore) ConfigFor(siteID uuid.UUID) (models.SiteConfig, error) {
	c := models.SiteConfig{SiteID: siteID}
	err := s.db.QueryRow(`
		SELECT header_brand, header_brand_html, footer_brand, footer_brand_html,
		       site_title, site_tagline, footer_description,
		       search_bar, theme_modale_button, mourning, updated_at
		FROM site_config WHERE site_id = $1
	`, siteID).Scan(
		&c.HeaderBrand, &c.HeaderBrandHTML, &c.FooterBrand, &c.FooterBrandHTML,
		&c.SiteTitle, &c.SiteTagline, &c.FooterDescription,
		&c.SearchBar, &c.ThemeModaleButton, &c.Mourning, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.DefaultSiteConfig(siteID), nil
	}
	if err != nil {
		return c, fmt.Errorf("site config: %w", err)
	}
	return c, nil
}

// SetConfig upserts a site's branding configuration.
func (s *SiteStore) SetConfig(c models.SiteConfig) error {
	_, err := s.db.Exec(`
		INSERT INTO site_config (site_id, header_brand, header_brand_html,
			footer_brand, footer_brand_html, site_title, site_tagline,
			footer_description, search_bar, theme_modale_button, mourning, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (site_id) DO UPDATE SET
			header_brand = EXCLUDED.header_brand,
			header_brand_html = EXCLUDED.header_brand_html,
			footer_brand = EXCLUDED.footer_brand,
			footer_brand_html = EXCLUDED.footer_brand_html,
			site_title = EXCLUDED.site_title,
			site_tagline = EXCLUDED.site_tagline,
			footer_description = EXCLUDED.footer_description,
			search_bar = EXCLUDED.search_bar,
			theme_modale_button = EXCLUDED.theme_modale_button,
			mourning = EXCLUDED.mourning,
			updated_at = EXCLUDED.updated_at
	`, c.SiteID, c.HeaderBrand, c.HeaderBrandHTML, c.FooterBrand, c.FooterBrandHTML,
		c.SiteTitle, c.SiteTagline, c.FooterDescription,
		c.SearchBar, c.ThemeModaleButton, c.Mourning)
	if err != nil {
		return fmt.Errorf("set site config: %w", err)
	}
	return nil
}
