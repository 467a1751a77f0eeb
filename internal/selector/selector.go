// Package selector narrows the candidate ticker list shown in the sidebar.
package selector

import "strings"

// Filter returns the candidates containing the uppercased query as a substring.
// An empty query returns the full list.
func Filter(query string, candidates []string) []string {
	if query == "" {
		out := make([]string, len(candidates))
		copy(out, candidates)
		return out
	}
	q := strings.ToUpper(query)
	out := make([]string, 0, len(candidates))
	for _, s := range candidates {
		if strings.Contains(s, q) {
			out = append(out, s)
		}
	}
	return out
}

// Select keeps the requested symbols that are offered in options, dropping duplicates.
func Select(requested, options []string) []string {
	offered := make(map[string]struct{}, len(options))
	for _, o := range options {
		offered[o] = struct{}{}
	}
	seen := make(map[string]struct{}, len(requested))
	out := make([]string, 0, len(requested))
	for _, r := range requested {
		if _, ok := offered[r]; !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
