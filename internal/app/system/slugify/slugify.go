// Package slugify derives URL-safe slugs from section names.
//
// Make produces the base slug; uniqueness against the sections collection is
// the caller's concern (the section store probes with its own id excluded and
// appends a numeric suffix on collision).
package slugify

import (
	"fmt"
	"strings"
)

// Make converts a name into a slug: lowercase, every run of non-alphanumeric
// characters collapsed to a single hyphen, leading/trailing hyphens trimmed.
func Make(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	lastHyphen := false
	for _, r := range lower {
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

	return strings.Trim(b.String(), "-")
}

// WithSuffix returns the numbered variant used for collision resolution.
// WithSuffix("getting-started", 2) == "getting-started-2".
func WithSuffix(base string, n int) string {
	return fmt.Sprintf("%s-%d", base, n)
}
