package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Slugify derives a URL-safe slug from a title: lowercase, runs of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens stripped. A title with no alphanumeric content yields a
// random token so the slug is never empty.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return SlugSuffix()
	}
	return slug
}

// SlugSuffix returns a short random token used both as a collision
// disambiguator and as the fallback slug for unrepresentable titles.
func SlugSuffix() string {
	return uuid.NewString()[:8]
}
