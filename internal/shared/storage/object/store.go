package object

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned when no object exists at a key.
var ErrNotFound = errors.New("object not found")

// ObjectStore stores binary objects under caller-chosen keys.
type ObjectStore interface {
	// Upload writes r at key and returns a download URL and the byte count.
	Upload(ctx context.Context, key string, contentType string, r io.Reader) (url string, sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// JoinURL appends a storage key to a base URL.
func JoinURL(baseURL, key string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	k := strings.TrimLeft(key, "/")
	if base == "" {
		return "/" + k
	}
	return base + "/" + k
}
