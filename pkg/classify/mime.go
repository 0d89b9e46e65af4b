package classify

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMIME sniffs head (at most magicSniffBytes) and returns the
// detected MIME type string, ignoring any parameters (e.g. "; charset=").
// Grounded on the gabriel-vasile/mimetype detection table referenced by
// the retrieved corpus for magic-byte sniffing.
func DetectMIME(head []byte) string {
	mt := mimetype.Detect(head)
	s := mt.String()
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
