package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"iolib/internal/domain"
)

var _ domain.ObjectStore = (*S3)(nil)

// S3Config configures an S3-compatible endpoint with static keys.
type S3Config struct {
	Region    string
	KeyID     string
	Secret    string
	Endpoint  string
	PathStyle bool
}

// S3 reads objects from S3 or an S3-compatible store.
type S3 struct {
	client *s3.Client
}

// NewS3 creates an S3 client. An Endpoint without a scheme is reached over
// https.
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Region == "" || cfg.KeyID == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("S3 config is incomplete")
	}
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.KeyID, cfg.Secret, ""),
		UsePathStyle: cfg.PathStyle,
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.Contains(endpoint, "://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(endpoint)
	}
	return &S3{client: s3.New(opts)}, nil
}

// CheckBucket issues a HeadBucket.
func (s *S3) CheckBucket(ctx context.Context, bucket string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var nf *types.NotFound
		var nb *types.NoSuchBucket
		if errors.As(err, &nf) || errors.As(err, &nb) {
			return domain.ErrNotFoundf("bucket %q not found", bucket)
		}
		return err
	}
	return nil
}

// List pages through ListObjectsV2 until limit keys are collected.
func (s *S3) List(ctx context.Context, bucket, prefix string, limit int) ([]string, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	var names []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			names = append(names, aws.ToString(obj.Key))
			if limit > 0 && len(names) == limit {
				return names, nil
			}
		}
	}
	return names, nil
}

// Open streams an object.
func (s *S3) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var nk *types.NoSuchKey
		if errors.As(err, &nk) {
			return nil, domain.ErrNotFoundf("object s3://%s/%s not found", bucket, name)
		}
		return nil, err
	}
	return out.Body, nil
}
