// Package mapping proposes which spreadsheet column feeds which task field.
package mapping

import (
	"strings"
	"unicode/utf8"

	"sheetimport/domain/task"
	"sheetimport/internal/textnorm"
)

// minContainedLen keeps one- and two-letter headers from matching everything
const minContainedLen = 3

// NormalizeHeader lower-cases h, strips diacritics and collapses every run of
// whitespace or punctuation to a single underscore
func NormalizeHeader(h string) string {
	return textnorm.Key(h, '_')
}

// AutoMap builds a mapping from scratch. Exact synonym matches are claimed
// first, field by field in canonical order; fields still unmapped then take
// the first unclaimed header that contains, or is contained in, a synonym.
// Equal headers always yield an equal mapping.
func AutoMap(headers []string) task.ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeader(h)
	}

	m := task.NewColumnMapping()
	claimed := make([]bool, len(headers))

	claim := func(field task.FieldKey, match func(header, synonym string) bool) {
		if _, ok := m.Column(field); ok {
			return
		}
		for col, header := range normalized {
			if claimed[col] || header == "" {
				continue
			}
			for _, syn := range synonyms[field] {
				if match(header, syn) {
					m.Set(field, col)
					claimed[col] = true
					return
				}
			}
		}
	}

	for _, field := range task.AllFields() {
		claim(field, func(h, s string) bool { return h == s })
	}
	for _, field := range task.AllFields() {
		claim(field, contains)
	}
	return m
}

func contains(header, synonym string) bool {
	switch {
	case utf8.RuneCountInString(synonym) >= minContainedLen && strings.Contains(header, synonym):
		return true
	case utf8.RuneCountInString(header) >= minContainedLen && strings.Contains(synonym, header):
		return true
	}
	return false
}

// MappedHeader is one field with the header text of its column
type MappedHeader struct {
	Field  task.FieldKey `json:"field"`
	Column int           `json:"column"`
	Header string        `json:"header"`
}

// MappedHeaders lists mapped fields in canonical order with their header
// text. Columns outside headers are reported with an empty header.
func MappedHeaders(m task.ColumnMapping, headers []string) []MappedHeader {
	entries := m.Entries()
	out := make([]MappedHeader, 0, len(entries))
	for _, e := range entries {
		mh := MappedHeader{Field: e.Field, Column: e.Column}
		if e.Column >= 0 && e.Column < len(headers) {
			mh.Header = headers[e.Column]
		}
		out = append(out, mh)
	}
	return out
}

// Unmapped returns the indexes of columns no field claims
func Unmapped(m task.ColumnMapping, width int) []int {
	var out []int
	for col := 0; col < width; col++ {
		if _, ok := m.FieldFor(col); !ok {
			out = append(out, col)
		}
	}
	return out
}
