package objectstore

import (
	"context"
	"fmt"

	"iolib/internal/domain"
	"iolib/internal/gcp"
	"iolib/internal/service/storage"
)

// Config carries the credentials of every supported store. Only the block
// matching the requested scheme is used.
type Config struct {
	GCP   gcp.Credentials
	S3    S3Config
	Azure AzureConfig
}

// Open returns the store for a storage.Location scheme.
func Open(ctx context.Context, scheme string, cfg Config) (domain.ObjectStore, error) {
	switch scheme {
	case storage.SchemeGCS, "":
		return NewGCS(ctx, cfg.GCP)
	case storage.SchemeS3:
		return NewS3(cfg.S3)
	case storage.SchemeAzure:
		return NewAzure(cfg.Azure)
	default:
		return nil, fmt.Errorf("open object store: %w",
			domain.ErrValidation(domain.ErrInvalidInput, "unsupported storage scheme %q", scheme))
	}
}
