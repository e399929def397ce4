package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// SlugMaxLen caps slugs, counted in runes
	SlugMaxLen = 80
	// SlugFallback replaces titles that normalize to nothing
	SlugFallback = "post"
)

// isSlugRune reports whether r survives slug filtering.
// Whitespace is handled separately since it becomes a hyphen.
func isSlugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= '가' && r <= '힣': // Hangul syllables
		return true
	case r == '-':
		return true
	}
	return false
}

// BuildSlug converts a title into a filesystem and URL safe slug of at most SlugMaxLen runes.
func BuildSlug(title string) string {
	return BuildSlugLimit(title, SlugMaxLen)
}

// BuildSlugLimit is BuildSlug with an explicit rune cap.
// A limit outside 1..SlugMaxLen falls back to SlugMaxLen.
func BuildSlugLimit(title string, limit int) string {
	if limit <= 0 || limit > SlugMaxLen {
		limit = SlugMaxLen
	}

	// Compose decomposed jamo so Hangul survives the filter
	lowered := strings.ToLower(norm.NFC.String(title))

	var b strings.Builder
	b.Grow(len(lowered))

	// Dropped runes do not end a whitespace run: "a ! b" -> "a-b"
	inSpace := false
	for _, r := range lowered {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
		case isSlugRune(r):
			if inSpace {
				b.WriteByte('-')
				inSpace = false
			}
			b.WriteRune(r)
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = SlugFallback
	}

	// Cut on rune boundaries. A trailing hyphen left by the cut is kept.
	runes := []rune(slug)
	if len(runes) > limit {
		slug = string(runes[:limit])
	}
	return slug
}
