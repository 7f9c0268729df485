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

// SitesList lists all sites.
func (a *Admin) SitesList(w http.ResponseWriter, r *http.Request) {
	sites, err := a.sites.List()
	if err != nil {
		slog.Error("list sites failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": sites})
}

// SiteCreate registers a new site hostname.
func (a *Admin) SiteCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hostname  string `json:"hostname"`
		SiteName  string `json:"site_name"`
		IsDefault bool   `json:"is_default"`
	}
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Hostname == "" {
		jsonError(w, http.StatusUnprocessableEntity, "Hostname is required.")
		return
	}

	site, err := a.sites.Create(&models.Site{
		Hostname:  req.Hostname,
		SiteName:  req.SiteName,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			jsonError(w, http.StatusConflict, "a site with this hostname already exists")
			return
		}
		slog.Error("create site failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, site)
}

// AnalyticsGet returns a site's analytics settings; a site without a
// stored record yields the empty defaults.
func (a *Admin) AnalyticsGet(w http.ResponseWriter, r *http.Request) {
	siteID, ok := a.siteID(w, r)
	if !ok {
		return
	}
	settings, err := a.sites.AnalyticsFor(siteID)
	if err != nil {
		slog.Error("get analytics settings failed", "error", err, "site", siteID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// AnalyticsUpdate upserts a site's analytics settings.
func (a *Admin) AnalyticsUpdate(w http.ResponseWriter, r *http.Request) {
	siteID, ok := a.siteID(w, r)
	if !ok {
		return
	}
	var req struct {
		HeadScripts string `json:"head_scripts"`
		BodyScripts string `json:"body_scripts"`
	}
	if err := readJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings := models.AnalyticsSettings{
		SiteID:      siteID,
		HeadScripts: req.HeadScripts,
		BodyScripts: req.BodyScripts,
	}
	if err := a.sites.SetAnalytics(settings); err != nil {
		slog.Error("set analytics settings failed", "error", err, "site", siteID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Scripts are embedded in every public response context.
	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, settings)
}

// ConfigGet returns a site's branding configuration; a site without a
// stored record yields the institutional defaults.
func (a *Admin) ConfigGet(w http.ResponseWriter, r *http.Request) {
	siteID, ok := a.siteID(w, r)
	if !ok {
		return
	}
	cfg, err := a.sites.ConfigFor(siteID)
	if err != nil {
		slog.Error("get site config failed", "error", err, "site", siteID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ConfigUpdate upserts a site's branding configuration.
func (a *Admin) ConfigUpdate(w http.ResponseWriter, r *http.Request) {
	siteID, ok := a.siteID(w, r)
	if !ok {
		return
	}

	// Start from the current values so partial updates keep defaults.
	cfg, err := a.sites.ConfigFor(siteID)
	if err != nil {
		slog.Error("get site config failed", "error", err, "site", siteID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err := readJSON(r, &cfg); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg.SiteID = siteID

	if err := a.sites.SetConfig(cfg); err != nil {
		slog.Error("set site config failed", "error", err, "site", siteID)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if a.pageCache != nil {
		a.pageCache.InvalidateAll(r.Context())
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *Admin) siteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "siteID"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid site id")
		return uuid.Nil, false
	}
	return id, true
}
