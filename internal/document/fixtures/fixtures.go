// Package fixtures holds the static sample documents used by the PDF-split
// tutorial's tests and by the document service's optional seeding.
//
// The table is built once at package init and never mutated; every accessor
// hands out copies, so concurrent readers need no locking.
package fixtures

import (
	"bytes"
	"sort"

	"github.com/lastutorials/pdfsplit/internal/document"
)

const (
	DocumentA   document.ID = "las:document:a"
	DocumentABC document.ID = "las:document:abc"
)

// placeholderPDF is the explicit payload assigned to DocumentABC. The
// upstream fixture declared a content field without a value; this is the
// smallest byte sequence that still identifies as a PDF.
var placeholderPDF = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n%%EOF\n")

// PlaceholderPDF returns a copy of the payload stored for DocumentABC.
func PlaceholderPDF() []byte { return bytes.Clone(placeholderPDF) }

var table = map[document.ID]document.Document{
	DocumentA: {
		DocumentID:  DocumentA,
		ContentType: document.ContentTypePDF,
	},
	DocumentABC: {
		DocumentID:  DocumentABC,
		ContentType: document.ContentTypePDF,
		Content:     placeholderPDF,
	},
}

// Lookup returns a copy of the fixture stored under id.
func Lookup(id document.ID) (document.Document, bool) {
	d, ok := table[id]
	if !ok {
		return document.Document{}, false
	}
	return d.Clone(), true
}

// Len is the number of fixture records.
func Len() int { return len(table) }

// IDs returns every fixture identifier in sorted order.
func IDs() []document.ID {
	out := make([]document.ID, 0, len(table))
	for id := range table {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// All returns copies of every fixture, ordered by identifier.
func All() []document.Document {
	ids := IDs()
	out := make([]document.Document, 0, len(ids))
	for _, id := range ids {
		d := table[id]
		out = append(out, d.Clone())
	}
	return out
}
