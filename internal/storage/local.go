package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// LocalUploader writes files below dir. They are served by the router under
// /uploads, so the returned URL is baseURL + "/uploads/" + name.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create uploads directory")
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (u *LocalUploader) Upload(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	clean := filepath.Clean("/" + name)
	fullPath := filepath.Join(u.dir, clean)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", errors.Wrap(err, "create upload directory")
	}

	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", errors.Wrap(err, "create upload file")
	}
	if _, err := io.Copy(f, io.LimitReader(r, MaxFileSize+1)); err != nil {
		f.Close()
		return "", errors.Wrap(err, "write upload file")
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrap(err, "close upload file")
	}
	return u.baseURL + "/uploads" + filepath.ToSlash(clean), nil
}
