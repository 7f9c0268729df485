package slug

import "testing"

// TestGenerate exercises the slug generator with typical titles, accents,
// special characters, and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal titles ---
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "title with year", input: "Hello World 2026", want: "hello-world-2026"},
		{name: "already lowercase", input: "already lowercase", want: "already-lowercase"},
		{name: "single word", input: "GoLang", want: "golang"},

		// --- Accented characters (category names are often French) ---
		{name: "actualites", input: "Actualités", want: "actualites"},
		{name: "evenements", input: "Événements", want: "evenements"},
		{name: "a la carte", input: "À la carte", want: "a-la-carte"},
		{name: "german umlauts", input: "Über die Brücke", want: "uber-die-brucke"},

		// --- Special characters ---
		{name: "punctuation marks", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "ampersand", input: "Rock & Roll", want: "rock-and-roll"},
		{name: "colon separated title", input: "Go: The Complete Guide", want: "go-the-complete-guide"},

		// --- Whitespace and hyphens ---
		{name: "surrounding spaces", input: "  hello world  ", want: "hello-world"},
		{name: "consecutive spaces collapsed", input: "hello    world", want: "hello-world"},
		{name: "multiple hyphens collapsed", input: "hello---world", want: "hello-world"},
		{name: "existing hyphen preserved", input: "well-known fact", want: "well-known-fact"},

		// --- Edge cases ---
		{name: "empty string", input: "", want: ""},
		{name: "only spaces", input: "     ", want: ""},
		{name: "single character", input: "A", want: "a"},
		{name: "all numbers", input: "123456", want: "123456"},
		{name: "date-like string", input: "2026-02-25", want: "2026-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that generating a slug from an already
// valid slug produces the same result.
func TestGenerate_Idempotent(t *testing.T) {
	slugs := []string{
		"hello-world",
		"actualites",
		"my-blog-post-2026",
		"a",
		"123",
	}

	for _, s := range slugs {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}
