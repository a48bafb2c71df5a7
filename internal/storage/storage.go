package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ObjectStore is the boundary to the photo bucket. Upload must return a
// publicly resolvable URL; Remove is best-effort per item, callers proceed
// even when individual deletions fail.
type ObjectStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, objectPaths []string) error
	Close() error
}

const uploadPrefix = "public_uploads"

// ObjectPath builds a collision-resistant object name for an uploaded
// photo, keeping the original file extension.
func ObjectPath(filename string) (string, error) {
	randomBytes := make([]byte, 6)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate object name: %w", err)
	}

	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}

	return fmt.Sprintf("%s/%d-%s%s",
		uploadPrefix,
		time.Now().UnixMilli(),
		hex.EncodeToString(randomBytes),
		ext,
	), nil
}

// PathFromURL recovers the object path from a public URL produced by
// Upload, for storage cleanup on report delete. Returns "" when the URL
// does not point into the upload prefix.
func PathFromURL(url string) string {
	marker := "/" + uploadPrefix + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return uploadPrefix + "/" + url[idx+len(marker):]
}
