package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ObjectStore is the slice of the object store the services depend on:
// upload by key returning a publicly resolvable URL, and deletion by
// that URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	DeleteByURL(ctx context.Context, url string) error
}

// MinioStore implements ObjectStore on a MinIO bucket whose contents are
// served from a public base URL.
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioStore creates a store for the given bucket. publicURL is the
// base under which the bucket's objects resolve, without trailing slash.
func NewMinioStore(client *minio.Client, bucket, publicURL string) *MinioStore {
	return &MinioStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// ObjectKey builds a collision-free key under prefix for an uploaded file.
func ObjectKey(prefix string, userID int64, filename string) string {
	return fmt.Sprintf("%s/%d/%s_%s", prefix, userID, uuid.NewString(), sanitizeFilename(filename))
}

// sanitizeFilename keeps object keys free of path separators and spaces.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		name = "file"
	}
	return name
}

// Upload stores the object and returns its public URL.
func (s *MinioStore) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// DeleteByURL removes the object a public URL points at. URLs outside
// this store's base are ignored.
func (s *MinioStore) DeleteByURL(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	key, ok := strings.CutPrefix(url, s.publicURL+"/")
	if !ok {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}
