package repository

import (
	"context"
	"errors"

	"github.com/lastutorials/pdfsplit/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrExists   = errors.New("document already exists")
	ErrConflict = errors.New("document modified concurrently")
)

// Patch describes a partial update. Nil fields are left unchanged; a
// non-nil empty Content clears the payload.
type Patch struct {
	ContentType *string
	Content     *[]byte
	ContentKey  *string
}

// Repository is the persistence contract shared by the memory, Mongo and
// Redis backends.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) error
	Get(ctx context.Context, id document.ID) (*document.Document, error)
	List(ctx context.Context) ([]*document.Document, error)
	Update(ctx context.Context, id document.ID, p Patch) (*document.Document, error)
	Delete(ctx context.Context, id document.ID) error
}

func (p Patch) apply(d *document.Document) {
	if p.ContentType != nil {
		d.ContentType = *p.ContentType
	}
	if p.Content != nil {
		if len(*p.Content) == 0 {
			d.Content = nil
		} else {
			d.Content = *p.Content
		}
	}
	if p.ContentKey != nil {
		d.ContentKey = *p.ContentKey
	}
}
