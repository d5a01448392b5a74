package compose

import "strings"

// Join trims each part, expands literal \n sequences and joins the non-empty
// parts with a blank line.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, ExpandNewlines(p))
	}
	return strings.Join(kept, "\n\n")
}

// Assemble builds a full reply from an intro, the selection's filled slots
// and a closing. Any of them may be empty.
func Assemble(intro string, sel *Selection, closing string) string {
	parts := []string{intro}
	if sel != nil {
		parts = append(parts, sel.Texts()...)
	}
	parts = append(parts, closing)
	return Join(parts...)
}
