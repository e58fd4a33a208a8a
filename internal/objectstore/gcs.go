// Package objectstore adapts GCS, S3 and Azure Blob Storage to
// domain.ObjectStore.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"iolib/internal/domain"
	"iolib/internal/gcp"
)

var _ domain.ObjectStore = (*GCS)(nil)

// GCS reads objects from Google Cloud Storage.
type GCS struct {
	client *storage.Client
}

// NewGCS creates a read-only GCS client.
func NewGCS(ctx context.Context, creds gcp.Credentials) (*GCS, error) {
	client, err := storage.NewClient(ctx, creds.ClientOptions(storage.ScopeReadOnly)...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCS{client: client}, nil
}

// Close releases the client.
func (g *GCS) Close() error { return g.client.Close() }

// CheckBucket fetches the bucket attributes.
func (g *GCS) CheckBucket(ctx context.Context, bucket string) error {
	if _, err := g.client.Bucket(bucket).Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrBucketNotExist) {
			return domain.ErrNotFoundf("bucket %q not found", bucket)
		}
		return err
	}
	return nil
}

// List returns up to limit object names under prefix in lexical order.
func (g *GCS) List(ctx context.Context, bucket, prefix string, limit int) ([]string, error) {
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for limit <= 0 || len(names) < limit {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Open streams an object.
func (g *GCS) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	rc, err := g.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrNotFoundf("object gs://%s/%s not found", bucket, name)
		}
		return nil, err
	}
	return rc, nil
}
