package command

import (
	"strings"

	"dompet/internal/core"
)

// ResolveCategory matches the leading word of note against known categories.
// On a match it returns the category in its registry casing and the note
// without that word; otherwise "Lainnya" and the note untouched. An empty
// remainder is replaced by the category so the row always has a note.
func ResolveCategory(note string, known []string) (category, remaining string) {
	fields := strings.Fields(note)
	category = core.DefaultCategory
	remaining = strings.TrimSpace(note)

	if len(fields) > 0 {
		if canonical, ok := Canonical(fields[0], known); ok {
			category = canonical
			remaining = strings.Join(fields[1:], " ")
		}
	}
	if remaining == "" {
		remaining = category
	}
	return category, remaining
}

// Canonical looks name up case-insensitively and returns the registry's
// spelling.
func Canonical(name string, known []string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, k := range known {
		k = strings.TrimSpace(k)
		if strings.EqualFold(name, k) {
			return k, true
		}
	}
	return "", false
}
