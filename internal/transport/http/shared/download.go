package shared

import (
	"mime"
	"net/http"
	"path/filepath"
)

// Attachment marks the response as a download named after the base of
// filename. Names that are not plain tokens are quoted or RFC 2231 encoded.
func Attachment(w http.ResponseWriter, filename string) {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(filename)})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
}
