// Package slug derives URL-safe identifiers from human text. The same
// transform serves product base slugs, product type slugs and variant
// slugs, so it has to be deterministic and idempotent.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make lower-cases, strips diacritics, turns whitespace runs into single
// hyphens, drops anything outside [a-z0-9-], collapses repeated hyphens
// and trims the ends. Make(Make(s)) == Make(s) for every s; the result
// matches ^[a-z0-9]+(-[a-z0-9]+)*$ or is empty.
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case unicode.IsSpace(r), r == '-', r == '_', r == '/':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
		// anything else is dropped
	}
	return strings.Trim(b.String(), "-")
}

// ForVariant composes the canonical variant slug from the owning
// product's base slug and the free-text version name.
func ForVariant(baseSlug, versionName string) string {
	v := Make(versionName)
	if v == "" {
		return baseSlug
	}
	return baseSlug + "-" + v
}
