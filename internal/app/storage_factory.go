package app

import (
	"context"
	"strings"

	"github.com/tukangsapu/sapu/internal/storage"
	"github.com/tukangsapu/sapu/internal/storage/gcs"
	"github.com/tukangsapu/sapu/internal/storage/local"
)

// NewObjectStore picks the photo backend by DSN shape: "gs://bucket" for
// Google Cloud Storage, anything else is treated as a local directory.
func NewObjectStore(ctx context.Context, dsn, publicBaseURL string) (storage.ObjectStore, error) {
	if bucket, ok := strings.CutPrefix(dsn, "gs://"); ok {
		return gcs.NewGCSStore(ctx, bucket)
	}
	return local.NewLocalStore(dsn, publicBaseURL)
}
