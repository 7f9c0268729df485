package models

import (
	"time"

	"github.com/google/uuid"
)

// Site represents a served site. Settings records are singletons per site.
type Site struct {
	ID        uuid.UUID `json:"id"`
	Hostname  string    `json:"hostname"`
	SiteName  string    `json:"site_name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnalyticsSettings holds the tracking script blobs injected into rendered
// pages: one for the <head>, one before the closing <body> tag.
type AnalyticsSettings struct {
	SiteID      uuid.UUID `json:"site_id"`
	HeadScripts string    `json:"head_scripts"`
	BodyScripts string    `json:"body_scripts"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SiteConfig is the per-site branding configuration: institutional block
// marks for the header and footer, site title and tagline, and a few
// display toggles.
type SiteConfig struct {
	SiteID            uuid.UUID `json:"site_id"`
	HeaderBrand       string    `json:"header_brand"`
	HeaderBrandHTML   string    `json:"header_brand_html"`
	FooterBrand       string    `json:"footer_brand"`
	FooterBrandHTML   string    `json:"footer_brand_html"`
	SiteTitle         string    `json:"site_title"`
	SiteTagline       string    `json:"site_tagline"`
	FooterDescription string    `json:"footer_description"`
	SearchBar         bool      `json:"search_bar"`
	ThemeModaleButton bool      `json:"theme_modale_button"`
	Mourning          bool      `json:"mourning"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DefaultSiteConfig returns the branding defaults applied when a site has
// no stored configuration yet.
func DefaultSiteConfig(siteID uuid.UUID) SiteConfig {
	return SiteConfig{
		SiteID:          siteID,
		HeaderBrand:     "Intitulé officiel",
		HeaderBrandHTML: "Intitulé<br />officiel",
		FooterBrand:     "Intitulé officiel",
		FooterBrandHTML: "Intitulé<br />officiel",
		SiteTitle:       "Titre du site",
		SiteTagline:     "Sous-titre du site",
	}
}
