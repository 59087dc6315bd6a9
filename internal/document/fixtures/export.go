package fixtures

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/lastutorials/pdfsplit/internal/document"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Check verifies the table invariants: every key matches its record's
// documentId and every record passes document validation.
func Check() error {
	var errs []error
	for id, d := range table {
		if d.DocumentID != id {
			errs = append(errs, fmt.Errorf("fixture %s: documentId %q does not match key", id, d.DocumentID))
			continue
		}
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("fixture %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// record is the exported shape of a fixture; content is base64 text so
// YAML and JSON output carry the same representation.
type record struct {
	DocumentID  document.ID `json:"documentId" yaml:"documentId"`
	ContentType string      `json:"contentType" yaml:"contentType"`
	Content     string      `json:"content,omitempty" yaml:"content,omitempty"`
}

// Export writes the table as a documentId-keyed mapping in the given
// format ("yaml" or "json").
func Export(w io.Writer, format string) error {
	out := make(map[document.ID]record, len(table))
	for _, d := range All() {
		r := record{DocumentID: d.DocumentID, ContentType: d.ContentType}
		if d.Content != nil {
			r.Content = base64.StdEncoding.EncodeToString(d.Content)
		}
		out[d.DocumentID] = r
	}
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
