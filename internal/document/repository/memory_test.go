package repository

import (
	"context"
	"testing"

	"github.com/lastutorials/pdfsplit/internal/document"
	"github.com/stretchr/testify/require"
)

// exerciseRepo runs the same CRUD flow against any backend.
func exerciseRepo(t *testing.T, r Repository) {
	t.Helper()
	ctx := context.Background()

	d := &document.Document{DocumentID: "las:document:t1", ContentType: document.ContentTypePDF, Content: []byte("%PDF-1.4")}
	require.NoError(t, r.Create(ctx, d))
	require.False(t, d.CreatedAt.IsZero())
	require.ErrorIs(t, r.Create(ctx, &document.Document{DocumentID: "las:document:t1", ContentType: "text/plain"}), ErrExists)

	got, err := r.Get(ctx, "las:document:t1")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(got.Content))
	require.Equal(t, document.ContentTypePDF, got.ContentType)

	require.NoError(t, r.Create(ctx, &document.Document{DocumentID: "las:document:t0", ContentType: "text/plain"}))
	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, document.ID("las:document:t0"), list[0].DocumentID)

	ct := "text/plain"
	body := []byte("new")
	updated, err := r.Update(ctx, "las:document:t1", Patch{ContentType: &ct, Content: &body})
	require.NoError(t, err)
	require.Equal(t, "new", string(updated.Content))
	require.Equal(t, "text/plain", updated.ContentType)

	empty := []byte{}
	updated, err = r.Update(ctx, "las:document:t1", Patch{Content: &empty})
	require.NoError(t, err)
	require.Nil(t, updated.Content)

	_, err = r.Update(ctx, "las:document:missing", Patch{ContentType: &ct})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Delete(ctx, "las:document:t1"))
	_, err = r.Get(ctx, "las:document:t1")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, r.Delete(ctx, "las:document:t1"), ErrNotFound)

	list, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMemoryRepoCRUD(t *testing.T) {
	exerciseRepo(t, NewMemoryRepo())
}

func TestMemoryRepoIsolatesCallers(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	payload := []byte("hello")
	require.NoError(t, r.Create(ctx, &document.Document{DocumentID: "las:document:x", ContentType: "text/plain", Content: payload}))
	payload[0] = 'j'

	got, err := r.Get(ctx, "las:document:x")
	require.NoError(t, err)
	got.Content[1] = 'a'

	again, err := r.Get(ctx, "las:document:x")
	require.NoError(t, err)
	require.Equal(t, "hello", string(again.Content))
}
