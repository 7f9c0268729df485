// Package slug provides URL-friendly slug generation from arbitrary strings.
// Accented characters are transliterated to ASCII so that localized names
// ("Actualités") produce clean slugs ("actualites").
package slug

import (
	gosimple "github.com/gosimple/slug"
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	return gosimple.Make(s)
}
