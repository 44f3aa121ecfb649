package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes accented characters and removes the combining
// marks, so "Cáceres" and "Caceres" produce the same bytes.
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize produces the canonical comparison key for accent-insensitive
// matching: lowercase, diacritics stripped, whitespace runs collapsed to a
// single space, leading/trailing whitespace trimmed.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(stripDiacritics, s); err == nil {
		s = stripped
	}
	return strings.Join(strings.Fields(s), " ")
}

// MatchesMunicipality reports whether the normalized query is a substring
// of the municipality's normalized name or subregion.
func MatchesMunicipality(m *Municipality, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return true
	}
	if strings.Contains(Normalize(m.Nombre), normalizedQuery) {
		return true
	}
	if m.Subregion != nil && strings.Contains(Normalize(*m.Subregion), normalizedQuery) {
		return true
	}
	return false
}

// FilterMunicipalities keeps the rows matching the free-text query. The
// input order is preserved. An empty query keeps everything.
func FilterMunicipalities(rows []Municipality, query string) []Municipality {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	normalized := Normalize(query)

	filtered := make([]Municipality, 0, len(rows))
	for i := range rows {
		if MatchesMunicipality(&rows[i], normalized) {
			filtered = append(filtered, rows[i])
		}
	}
	return filtered
}
