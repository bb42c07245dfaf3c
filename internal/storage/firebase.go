package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FirebaseUploader stores objects in the Firebase Storage bucket of the app.
type FirebaseUploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseUploader(bucket *gcs.BucketHandle, bucketName string) *FirebaseUploader {
	return &FirebaseUploader{bucket: bucket, bucketName: bucketName}
}

// Upload writes the object and returns its token download URL.
func (u *FirebaseUploader) Upload(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	token := uuid.NewString()

	w := u.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", errors.Wrap(err, "upload object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "finalize object")
	}

	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucketName, url.PathEscape(name), token), nil
}
