package document

import (
	"bytes"
	"time"
)

// ContentTypePDF is the MIME type carried by every fixture record.
const ContentTypePDF = "application/pdf"

// ID is a namespaced document identifier of the form "las:document:<name>".
type ID string

func (id ID) String() string { return string(id) }

// Document is the document record shared by the fixture table, the
// repositories and the HTTP API. Content is optional; a nil Content means
// the record carries no payload (it is omitted from JSON and BSON).
type Document struct {
	DocumentID  ID        `json:"documentId" bson:"documentId"`
	ContentType string    `json:"contentType" bson:"contentType"`
	Content     []byte    `json:"content,omitempty" bson:"content,omitempty"`
	ContentKey  string    `json:"-" bson:"contentKey,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasContent reports whether the record carries a payload, either inline or
// offloaded to blob storage.
func (d *Document) HasContent() bool {
	return d.Content != nil || d.ContentKey != ""
}

// Clone returns a deep copy so callers can't alias the payload slice.
func (d *Document) Clone() Document {
	out := *d
	if d.Content != nil {
		out.Content = bytes.Clone(d.Content)
	}
	return out
}
