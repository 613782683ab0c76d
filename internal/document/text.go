package document

import "strings"

// SanitizeID normalizes a free-text identifier into the slug alphabet
// [a-z0-9-_]. Empty input stays empty; callers treat an empty slug as
// invalid rather than generating one.
func SanitizeID(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// LinesToList splits a newline-delimited blob into trimmed, non-empty lines.
// Blank-line suppression makes the round trip with ListToLines lossy.
func LinesToList(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// ListToLines joins a list into a newline-delimited blob.
func ListToLines(items []string) string {
	return strings.Join(items, "\n")
}
