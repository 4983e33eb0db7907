package normalize

import "strings"

// Tags splits a cell on "," or ";" into trimmed, non-empty tags. Repeats are
// dropped case-insensitively, keeping the first spelling.
func Tags(s string) []string {
	tags := []string{}
	seen := make(map[string]bool)
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		k := strings.ToLower(tag)
		if seen[k] {
			continue
		}
		seen[k] = true
		tags = append(tags, tag)
	}
	return tags
}

// Color accepts an optional "#" and 3 or 6 hex digits and returns "#rrggbb"
// in lower case, or "" for anything else
func Color(s string) string {
	hex := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(hex) != 3 && len(hex) != 6 {
		return ""
	}
	for _, r := range hex {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') {
			return ""
		}
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	return "#" + hex
}
