package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lastutorials/pdfsplit/internal/document"
	"github.com/lastutorials/pdfsplit/internal/document/fixtures"
	"github.com/lastutorials/pdfsplit/internal/document/repository"
	"github.com/lastutorials/pdfsplit/pkg/logger"
	"github.com/lastutorials/pdfsplit/pkg/metrics"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrExists    = errors.New("already exists")
	ErrNoContent = errors.New("document has no content")
	ErrInvalid   = errors.New("invalid document")
	ErrConflict  = errors.New("document modified concurrently")
)

// BlobStore holds document payloads outside the repository. It is
// satisfied by *storage.MinIOStorage.
type BlobStore interface {
	UploadFile(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	DownloadFile(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	ContentType *string
	Content     *[]byte
}

// Service implements the document operations used by the HTTP layer.
type Service struct {
	repo  repository.Repository
	blobs BlobStore
}

type Option func(*Service)

// WithBlobStore offloads payloads to b; records keep metadata only.
func WithBlobStore(b BlobStore) Option {
	return func(s *Service) { s.blobs = b }
}

func New(repo repository.Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(opts ...Option) *Service {
	return New(repository.NewMemoryRepo(), opts...)
}

func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalid), errors.Is(err, ErrExists), errors.Is(err, ErrNoContent), errors.Is(err, ErrConflict):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	metrics.DocumentOps.WithLabelValues(op, outcome).Inc()
}

// translate maps repository sentinels to service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrExists):
		return ErrExists
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	}
	return err
}

// Create validates d, mints an id when none is given and stores it.
func (s *Service) Create(ctx context.Context, d *document.Document) (err error) {
	defer func() { observe("create", err) }()
	if d.DocumentID == "" {
		d.DocumentID = document.NewID()
	}
	// an empty payload means no payload, as in Patch
	if len(d.Content) == 0 {
		d.Content = nil
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	offload := s.blobs != nil && len(d.Content) > 0
	if offload {
		// don't overwrite another record's payload
		if _, err := s.repo.Get(ctx, d.DocumentID); err == nil {
			return ErrExists
		}
		if err := s.upload(ctx, d.DocumentID, d.ContentType, d.Content); err != nil {
			return err
		}
	}
	rec := d.Clone()
	if offload {
		rec.Content = nil
		rec.ContentKey = string(d.DocumentID)
	}
	if err := s.repo.Create(ctx, &rec); err != nil {
		return translate(err)
	}
	d.ContentKey = rec.ContentKey
	d.CreatedAt, d.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	logger.L().Debug("document created", zap.String("documentId", d.DocumentID.String()), zap.Bool("offloaded", d.ContentKey != ""))
	return nil
}

func (s *Service) Get(ctx context.Context, id document.ID) (d *document.Document, err error) {
	defer func() { observe("get", err) }()
	d, err = s.repo.Get(ctx, id)
	return d, translate(err)
}

func (s *Service) List(ctx context.Context) (list []*document.Document, err error) {
	defer func() { observe("list", err) }()
	return s.repo.List(ctx)
}

// Content returns the payload and its declared type, reading offloaded
// payloads from the blob store.
func (s *Service) Content(ctx context.Context, id document.ID) (body []byte, contentType string, err error) {
	defer func() { observe("content", err) }()
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", translate(err)
	}
	if d.Content != nil {
		return d.Content, d.ContentType, nil
	}
	if d.ContentKey == "" || s.blobs == nil {
		return nil, "", ErrNoContent
	}
	rc, err := s.blobs.DownloadFile(ctx, d.ContentKey)
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", d.ContentKey, err)
	}
	defer rc.Close()
	body, err = io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", d.ContentKey, err)
	}
	return body, d.ContentType, nil
}

// ContentURL returns a time-limited download link for an offloaded payload.
// Inline payloads have no link and yield ErrNoContent.
func (s *Service) ContentURL(ctx context.Context, id document.ID, ttl time.Duration) (u string, err error) {
	defer func() { observe("content_url", err) }()
	d, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", translate(err)
	}
	if d.ContentKey == "" || s.blobs == nil {
		return "", ErrNoContent
	}
	u, err = s.blobs.GetPresignedURL(ctx, d.ContentKey, ttl)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", d.ContentKey, err)
	}
	return u, nil
}

// Update applies req after validating the resulting record.
func (s *Service) Update(ctx context.Context, id document.ID, req UpdateRequest) (d *document.Document, err error) {
	defer func() { observe("update", err) }()
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	next := cur.Clone()
	if req.ContentType != nil {
		next.ContentType = *req.ContentType
	}
	if req.Content != nil {
		next.Content = *req.Content
		next.ContentKey = ""
	}
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	p := repository.Patch{ContentType: req.ContentType}
	if req.Content != nil {
		body := *req.Content
		key := ""
		if s.blobs != nil && len(body) > 0 {
			if err := s.upload(ctx, id, next.ContentType, body); err != nil {
				return nil, err
			}
			key = string(id)
			body = []byte{}
		} else if cur.ContentKey != "" && s.blobs != nil {
			if err := s.blobs.DeleteFile(ctx, cur.ContentKey); err != nil {
				logger.Warnf("delete stale payload %s: %v", cur.ContentKey, err)
			}
		}
		p.Content = &body
		p.ContentKey = &key
	}
	d, err = s.repo.Update(ctx, id, p)
	return d, translate(err)
}

func (s *Service) Delete(ctx context.Context, id document.ID) (err error) {
	defer func() { observe("delete", err) }()
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return translate(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	if cur.ContentKey != "" && s.blobs != nil {
		if err := s.blobs.DeleteFile(ctx, cur.ContentKey); err != nil {
			logger.Warnf("delete payload %s: %v", cur.ContentKey, err)
		}
	}
	return nil
}

// SeedFixtures copies the fixture table into the repository, skipping ids
// that are already present. It returns how many records were inserted.
func (s *Service) SeedFixtures(ctx context.Context) (int, error) {
	n := 0
	for _, d := range fixtures.All() {
		err := s.Create(ctx, &d)
		if errors.Is(err, ErrExists) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("seed %s: %w", d.DocumentID, err)
		}
		n++
	}
	logger.Infof("seeded %d of %d fixture documents", n, fixtures.Len())
	return n, nil
}

func (s *Service) upload(ctx context.Context, id document.ID, contentType string, body []byte) error {
	if err := s.blobs.UploadFile(ctx, string(id), bytes.NewReader(body), int64(len(body)), contentType); err != nil {
		return fmt.Errorf("upload %s: %w", id, err)
	}
	return nil
}
