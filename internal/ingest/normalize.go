package ingest

import (
	"regexp"
	"strings"
)

var (
	nonWord     = regexp.MustCompile(`[^\w]`)
	underscores = regexp.MustCompile(`_+`)
)

// NormalizeHeader standardizes a raw column name: lowercase, whitespace and
// hyphens collapsed to single underscores, leading/trailing underscores
// trimmed. "Settlement ID " and "settlement-id" both normalize to
// "settlement_id".
func NormalizeHeader(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = nonWord.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// headerIndex maps normalized column names to their positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		name := NormalizeHeader(col)
		if name == "" {
			continue
		}
		if _, ok := idx[name]; !ok {
			idx[name] = i
		}
	}
	return idx
}
