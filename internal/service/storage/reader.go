// Package storage reads tabular objects from bucket-style object stores.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"iolib/internal/domain"
	"iolib/internal/tabular"
)

// MaxPrefixObjects bounds how many objects a prefix read concatenates.
const MaxPrefixObjects = 500

// Object store schemes accepted by ParseURI.
const (
	SchemeGCS   = "gs"
	SchemeS3    = "s3"
	SchemeAzure = "az"
)

// Location addresses an object, or a prefix of objects, in a store.
type Location struct {
	Scheme string
	Bucket string
	Key    string
}

func (l Location) String() string {
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Key)
}

// ParseURI splits gs://bucket/key, s3://bucket/key or az://container/key.
// A URI without a scheme is treated as gs.
func ParseURI(raw string) (Location, error) {
	if !strings.Contains(raw, "://") {
		raw = SchemeGCS + "://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, domain.ErrValidation(domain.ErrInvalidInput, "invalid storage uri %q: %v", raw, err)
	}
	switch u.Scheme {
	case SchemeGCS, SchemeS3, SchemeAzure:
	default:
		return Location{}, domain.ErrValidation(domain.ErrInvalidInput, "unsupported storage scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return Location{}, domain.ErrValidation(domain.ErrInvalidInput, "storage uri %q has no bucket", raw)
	}
	return Location{Scheme: u.Scheme, Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
}

// ReadRequest selects either one object (BlobName) or every object under
// Prefix, up to MaxPrefixObjects.
type ReadRequest struct {
	Bucket   string
	BlobName string
	Prefix   string
	CSV      tabular.CSVOptions
}

// Service reads CSV objects into frames.
type Service struct {
	store  domain.ObjectStore
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(store domain.ObjectStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Read reads one object, or concatenates every object under the prefix with
// columns aligned by name. BlobName wins when both are set.
func (s *Service) Read(ctx context.Context, req ReadRequest) (*domain.Frame, error) {
	if req.BlobName == "" && req.Prefix == "" {
		return nil, domain.ErrValidation(domain.ErrMissingObject, "Required blob_name or prefix in read_storage")
	}
	if req.BlobName != "" {
		if err := checkFormat(req.BlobName); err != nil {
			return nil, err
		}
	}
	if _, err := tabular.Codec(req.CSV.Encoding); err != nil {
		return nil, err
	}
	if err := s.store.CheckBucket(ctx, req.Bucket); err != nil {
		return nil, fmt.Errorf("get bucket %s: %w", req.Bucket, err)
	}

	if req.BlobName != "" {
		return s.readObject(ctx, req.Bucket, req.BlobName, req.CSV)
	}

	names, err := s.store.List(ctx, req.Bucket, req.Prefix, MaxPrefixObjects)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s: %w", req.Bucket, req.Prefix, err)
	}
	var result *domain.Frame
	for _, name := range names {
		if err := checkFormat(name); err != nil {
			return nil, err
		}
		f, err := s.readObject(ctx, req.Bucket, name, req.CSV)
		if err != nil {
			return nil, err
		}
		result = result.Concat(f)
	}
	if result == nil {
		result = domain.NewFrame()
	}
	s.logger.Debug("prefix read", "bucket", req.Bucket, "prefix", req.Prefix, "objects", len(names), "rows", result.Len())
	return result, nil
}

func (s *Service) readObject(ctx context.Context, bucket, name string, opts tabular.CSVOptions) (*domain.Frame, error) {
	rc, err := s.store.Open(ctx, bucket, name)
	if err != nil {
		return nil, fmt.Errorf("open %s/%s: %w", bucket, name, err)
	}
	defer rc.Close()

	f, err := tabular.ReadCSV(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, name, err)
	}
	return f, nil
}

func checkFormat(name string) error {
	if !tabular.IsCSV(name) {
		return domain.ErrValidation(domain.ErrUnsupportedFormat, "Only CSV currently supported")
	}
	return nil
}
