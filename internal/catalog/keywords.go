package catalog

import "strings"

// Keywords splits free text into lowercase search terms. Short tokens are
// dropped so connectives ("a", "về", "on") do not match half the catalog.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case ',', '.', ';', ':', '!', '?', '"', '\'', '(', ')':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n'
	})
	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len([]rune(f)) < 3 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
