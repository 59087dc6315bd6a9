package fixtures

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"

	"github.com/lastutorials/pdfsplit/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestKeysMatchDocumentIDs(t *testing.T) {
	for id, d := range table {
		require.Equal(t, id, d.DocumentID)
	}
	require.NoError(t, Check())
}

func TestContentTypesWellFormed(t *testing.T) {
	for _, d := range All() {
		require.NotEmpty(t, d.ContentType)
		require.NoError(t, document.ValidateContentType(d.ContentType), d.DocumentID)
	}
}

func TestLookupDocumentA(t *testing.T) {
	d, ok := Lookup("las:document:a")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", d.ContentType)
	assert.Nil(t, d.Content)
	assert.False(t, d.HasContent())
}

func TestLookupDocumentABC(t *testing.T) {
	d, ok := Lookup("las:document:abc")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", d.ContentType)
	assert.Equal(t, PlaceholderPDF(), d.Content)
	assert.Equal(t, "application/pdf", d.SniffContentType())
}

func TestLookupUnknown(t *testing.T) {
	require.NotPanics(t, func() {
		d, ok := Lookup("las:document:zzz")
		require.False(t, ok)
		require.Equal(t, document.Document{}, d)
	})
}

func TestTableSize(t *testing.T) {
	require.Equal(t, 2, Len())
	require.Equal(t, []document.ID{DocumentA, DocumentABC}, IDs())
	require.Len(t, All(), 2)
}

func TestLookupReturnsCopy(t *testing.T) {
	d, ok := Lookup(DocumentABC)
	require.True(t, ok)
	d.Content[0] = 'X'
	d.ContentType = "text/plain"

	again, _ := Lookup(DocumentABC)
	require.Equal(t, byte('%'), again.Content[0])
	require.Equal(t, document.ContentTypePDF, again.ContentType)
}

func TestPlaceholderPDFIsACopy(t *testing.T) {
	p := PlaceholderPDF()
	p[0] = 'X'

	require.Equal(t, byte('%'), PlaceholderPDF()[0])
	d, ok := Lookup(DocumentABC)
	require.True(t, ok)
	require.Equal(t, byte('%'), d.Content[0])
	for _, f := range All() {
		if f.DocumentID == DocumentABC {
			require.Equal(t, byte('%'), f.Content[0])
		}
	}
}

func TestConcurrentReaders(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = Lookup(DocumentA)
				_ = All()
			}
		}()
	}
	wg.Wait()
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "json"))

	var got map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, "las:document:a", got["las:document:a"]["documentId"])
	require.NotContains(t, got["las:document:a"], "content")
	require.Contains(t, got["las:document:abc"], "content")
}

func TestExportYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, "yaml"))

	var got map[string]record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	require.Equal(t, document.ContentTypePDF, got["las:document:abc"].ContentType)
	require.Empty(t, got["las:document:a"].Content)

	payload, err := base64.StdEncoding.DecodeString(got["las:document:abc"].Content)
	require.NoError(t, err)
	require.Equal(t, PlaceholderPDF(), payload)
}

func TestExportUnknownFormat(t *testing.T) {
	err := Export(&bytes.Buffer{}, "xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
