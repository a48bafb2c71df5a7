package gcs

import (
	"context"
	"fmt"
	"io"

	gstorage "cloud.google.com/go/storage"

	"github.com/shrimpsizemoose/trekker/logger"
)

// GCSStore keeps report photos in a Google Cloud Storage bucket. Objects
// are uploaded world-readable so the returned URL resolves without
// signing.
type GCSStore struct {
	client *gstorage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectPath)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.PredefinedACL = "publicRead"

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectPath), nil
}

func (s *GCSStore) Remove(ctx context.Context, objectPaths []string) error {
	for _, p := range objectPaths {
		if err := s.client.Bucket(s.bucket).Object(p).Delete(ctx); err != nil {
			// cleanup is best-effort, keep going
			logger.Error.Printf("Failed to delete object %s: %v", p, err)
		}
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
