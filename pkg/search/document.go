package search

import (
	"strings"
	"unicode"
)

// Document is one searchable unit in the index: a bag of terms tied to
// a row in the term-document matrix.
type Document struct {
	Terms []string
	ID    string
	Row   int
}

// NewDocument creates a document from pre-split terms.
func NewDocument(terms []string, id string, row int) *Document {
	return &Document{
		Terms: terms,
		ID:    id,
		Row:   row,
	}
}

// NewDocumentFromString tokenizes body and creates a document.
func NewDocumentFromString(body, id string, row int) *Document {
	return NewDocument(Tokenize(body), id, row)
}

// Tokenize lowercases the text and splits it on any non-alphanumeric
// rune. Terms shorter than 2 runes are dropped; they carry no signal
// and bloat the term list.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
