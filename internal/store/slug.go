// internal/store/slug.go
//
// Site-id derivation.
//
// • MakeSiteID(name) ─ converts a site name into a globally-unique-ready
//   id restricted to ASCII a-z, 0-9 and “-”.  Uniqueness itself is
//   enforced by the primary key on `sites`.
//
// Rules
// -----
// 1. Lower-case everything.
// 2. Convert any run of non-[a-z0-9] characters to one “-”.  That strips
//    spaces, punctuation, emoji, and non-ASCII.
// 3. Collapse consecutive “-” to a single “-”.
// 4. Trim leading / trailing “-”.
// 5. If the result is empty, return "site".
//
// Notes
// -----
// • No Unicode transliteration; legacy site ids were ASCII-only.
// • Ids are capped at 64 runes to fit the column.

package store

import "strings"

// MakeSiteID converts a site name into a lower-kebab ASCII id.
func MakeSiteID(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastWasDash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			// any non-ASCII or punctuation becomes a single dash
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	id := strings.Trim(b.String(), "-")
	if id == "" {
		return "site"
	}
	if len(id) > 64 {
		id = id[:64]
		id = strings.TrimRight(id, "-")
	}
	return id
}
