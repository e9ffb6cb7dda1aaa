// Package keywords turns the configured search terms into a recent-search
// query and tags fetched posts with the terms they contain.
package keywords

import "strings"

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// BuildQuery quotes every term and joins them with OR.
func BuildQuery(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(strings.ReplaceAll(term, `"`, ""))
		if term == "" {
			continue
		}
		parts = append(parts, `"`+term+`"`)
	}
	return strings.Join(parts, " OR ")
}

// Match returns the terms found in text, in term order.
func Match(text string, terms []string) []string {
	haystack := normalize(text)

	seen := make(map[string]bool)
	var matched []string
	for _, term := range terms {
		needle := normalize(strings.TrimSpace(term))
		if needle == "" || seen[needle] {
			continue
		}
		if strings.Contains(haystack, needle) {
			seen[needle] = true
			matched = append(matched, strings.TrimSpace(term))
		}
	}
	return matched
}

// Tag is the stored keyword string for a post. When no term is visible in
// the text the whole term list is used, since the search still matched it.
func Tag(text string, terms []string) string {
	if matched := Match(text, terms); len(matched) > 0 {
		return strings.Join(matched, ",")
	}

	all := make([]string, 0, len(terms))
	for _, term := range terms {
		if term = strings.TrimSpace(term); term != "" {
			all = append(all, term)
		}
	}
	return strings.Join(all, ",")
}

func normalize(s string) string {
	return strings.ToLower(apostrophes.Replace(s))
}
