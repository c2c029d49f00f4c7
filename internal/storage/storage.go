// Package storage abstracts where exported files land. A destination is either a local path or
// a gs://bucket/object URI.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	gcsclient "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/JakeFAU/event-crawler/internal/storage/gcs"
	"github.com/JakeFAU/event-crawler/internal/storage/local"
)

// BlobStore replaces whole objects.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data io.Reader) (string, error)
}

// StreamStore opens objects for incremental writes.
type StreamStore interface {
	Create(ctx context.Context, path string, contentType string) (io.WriteCloser, string, error)
}

// Store supports both write styles.
type Store interface {
	BlobStore
	StreamStore
}

// Destination is a resolved output location.
type Destination struct {
	Store Store
	// Key is the object path inside Store.
	Key string
	// URI is the human-readable location for logs.
	URI string
	// Close releases clients opened by Resolve.
	Close func() error
}

const gcsScheme = "gs://"

// Resolve maps dest onto a store. GCS options are only used for gs:// destinations.
func Resolve(ctx context.Context, dest string, opts ...option.ClientOption) (Destination, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return Destination{}, fmt.Errorf("output destination is required")
	}

	if strings.HasPrefix(dest, gcsScheme) {
		bucket, key, err := SplitGCSURI(dest)
		if err != nil {
			return Destination{}, err
		}
		client, err := gcsclient.NewClient(ctx, opts...)
		if err != nil {
			return Destination{}, fmt.Errorf("failed to create GCS client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: bucket})
		if err != nil {
			_ = client.Close()
			return Destination{}, fmt.Errorf("gcs store: %w", err)
		}
		return Destination{Store: store, Key: key, URI: dest, Close: client.Close}, nil
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return Destination{}, fmt.Errorf("resolve %s: %w", dest, err)
	}
	store, err := local.New(local.Config{BaseDir: filepath.Dir(abs)})
	if err != nil {
		return Destination{}, fmt.Errorf("local store: %w", err)
	}
	return Destination{
		Store: store,
		Key:   filepath.Base(abs),
		URI:   "file://" + abs,
		Close: func() error { return nil },
	}, nil
}

// SplitGCSURI splits gs://bucket/object/key into bucket and key.
func SplitGCSURI(uri string) (string, string, error) {
	rest := strings.TrimPrefix(uri, gcsScheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || strings.TrimSpace(key) == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("invalid GCS destination %q: want gs://bucket/object", uri)
	}
	return bucket, key, nil
}
