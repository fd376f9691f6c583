// Package tags canonicalizes free-text tag input into a deduplicated,
// validated set. Clients send tags as a JSON array, a JSON-encoded string,
// or a plain comma-separated string; all three forms normalize the same way.
package tags

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxTagLen is the maximum length of a single normalized tag.
const MaxTagLen = 50

// validTag matches lowercase alphanumerics, spaces, and hyphens.
var validTag = regexp.MustCompile(`^[a-z0-9\s-]+$`)

// Normalize canonicalizes a sequence of raw tags: lowercase, trimmed, only
// entries matching [a-z0-9\s-] of length 1..50, deduplicated preserving first
// occurrence. A nil or empty input yields an empty slice.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, t := range raw {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag == "" || len(tag) > MaxTagLen {
			continue
		}
		if !validTag.MatchString(tag) {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}

// Parse splits a string form of tag input into a raw sequence. A JSON array
// is decoded; anything else falls back to comma splitting. Malformed JSON is
// not an error, it just takes the comma path.
func Parse(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, "[") {
		var arr []string
		if err := json.Unmarshal([]byte(s), &arr); err == nil {
			return arr
		}
	}

	return strings.Split(s, ",")
}

// NormalizeString parses and normalizes a string form of tag input.
func NormalizeString(s string) []string {
	return Normalize(Parse(s))
}
