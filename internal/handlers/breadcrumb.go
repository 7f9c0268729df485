package handlers

import (
	"gazette/internal/models"
)

// Crumb is a single breadcrumb entry in a listing response.
type Crumb struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// filterCrumb builds the breadcrumb describing the active listing filter.
// At most one crumb survives: candidates are considered in the order tag,
// category, author, and a later filter overwrites an earlier one, so a
// category crumb wins over a tag crumb when both filters are supplied.
// The ordering mirrors the original site's behaviour and is kept as-is.
func filterCrumb(indexSlug string, tag *models.Tag, category *models.Category, author *models.User) *Crumb {
	var crumb *Crumb

	if tag != nil {
		crumb = &Crumb{
			Title: tag.Name,
			URL:   "/api/blog/" + indexSlug + "?tag=" + tag.Slug,
		}
	}
	if category != nil {
		crumb = &Crumb{
			Title: category.Name,
			URL:   "/api/blog/" + indexSlug + "?category=" + category.Slug,
		}
	}
	if author != nil {
		crumb = &Crumb{
			Title: author.FullName(),
			URL:   "/api/blog/" + indexSlug + "/author/" + author.ID.String(),
		}
	}

	return crumb
}
