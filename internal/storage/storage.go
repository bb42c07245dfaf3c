// Package storage implements the blob upload collaborator used for avatars
// and post media. Content is stored as-is and never inspected.
package storage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize is the largest upload accepted by the handlers (10MB).
const MaxFileSize = 10 * 1024 * 1024

// Uploader stores a byte stream under name and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

var unsafeExt = regexp.MustCompile(`[^a-z0-9.]`)

// ObjectName builds a collision-free object name in folder that keeps the
// extension of the client-supplied filename.
func ObjectName(folder, filename string) string {
	ext := unsafeExt.ReplaceAllString(strings.ToLower(filepath.Ext(filepath.Base(filename))), "")
	if len(ext) > 10 {
		ext = ""
	}
	return path.Join(folder, uuid.NewString()+ext)
}
