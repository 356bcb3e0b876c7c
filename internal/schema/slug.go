package schema

import "strings"

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a', 'ã': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o', 'õ': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
	'ñ': 'n', 'ç': 'c',
}

// Slugify derives a machine key from a human label: lowercase, Spanish
// accents folded to ASCII, whitespace runs collapsed to a single
// underscore, anything else outside [a-z0-9_] dropped. Idempotent.
func Slugify(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if f, ok := accentFold[r]; ok {
			r = f
		}
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			pendingSep = true
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
