package document

import (
	"errors"
	"fmt"
	"mime"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// IDPrefix is the namespace every document identifier lives under.
const IDPrefix = "las:document:"

var (
	ErrInvalidID          = errors.New("invalid document id")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrContentMismatch    = errors.New("content does not match content type")
)

var idNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ParseID validates s against the las:document:<name> scheme.
func ParseID(s string) (ID, error) {
	name, ok := strings.CutPrefix(strings.TrimSpace(s), IDPrefix)
	if !ok || !idNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(IDPrefix + name), nil
}

// NewID mints a fresh identifier in the document namespace.
func NewID() ID {
	return ID(IDPrefix + strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// ValidateContentType checks that ct is a well-formed "type/subtype" MIME type.
func ValidateContentType(ct string) error {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidContentType, ct, err)
	}
	if i := strings.IndexByte(mt, '/'); i <= 0 || i == len(mt)-1 {
		return fmt.Errorf("%w: %q", ErrInvalidContentType, ct)
	}
	return nil
}

// SniffContentType detects the MIME type of the inline payload. It returns
// an empty string when the record has no inline content.
func (d *Document) SniffContentType() string {
	if len(d.Content) == 0 {
		return ""
	}
	return mimetype.Detect(d.Content).String()
}

// Validate checks the identifier, the declared content type and, for
// payloads whose type can be recognised, that the declared type matches.
func (d *Document) Validate() error {
	id, err := ParseID(string(d.DocumentID))
	if err != nil {
		return err
	}
	if id != d.DocumentID {
		return fmt.Errorf("%w: %q is not normalised", ErrInvalidID, d.DocumentID)
	}
	if err := ValidateContentType(d.ContentType); err != nil {
		return err
	}
	if len(d.Content) == 0 {
		return nil
	}
	detected := mimetype.Detect(d.Content)
	// octet-stream and text/plain mean "unrecognised" to the detector, not a conflict.
	if detected.Is("application/octet-stream") || detected.Is("text/plain") {
		return nil
	}
	declared, _, _ := mime.ParseMediaType(d.ContentType)
	if !detected.Is(declared) {
		return fmt.Errorf("%w: declared %s, detected %s", ErrContentMismatch, declared, detected.String())
	}
	return nil
}
