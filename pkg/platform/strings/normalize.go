// Package strings holds small slice helpers for values read from tokens
// and request bodies.
package strings

import "strings"

// NormalizeSet trims and lowercases each value, dropping blanks and repeats.
// First occurrences keep their order. ["  Admin", "admin", ""] becomes ["admin"].
func NormalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
