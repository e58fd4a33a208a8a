package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"iolib/internal/domain"
)

var _ domain.ObjectStore = (*Azure)(nil)

// AzureConfig holds shared-key credentials. ServiceURL defaults to the
// public blob endpoint of Account.
type AzureConfig struct {
	Account    string
	Key        string
	ServiceURL string
}

// Azure reads blobs from Azure Blob Storage. Buckets are containers.
type Azure struct {
	client *azblob.Client
}

// NewAzure creates a blob client authenticated with the account key.
func NewAzure(cfg AzureConfig) (*Azure, error) {
	if cfg.Account == "" || cfg.Key == "" {
		return nil, fmt.Errorf("Azure account name and key are required")
	}
	cred, err := azblob.NewSharedKeyCredential(cfg.Account, cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("create shared key credential: %w", err)
	}
	serviceURL := cfg.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", cfg.Account)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	return &Azure{client: client}, nil
}

// CheckBucket fetches the container properties.
func (a *Azure) CheckBucket(ctx context.Context, bucket string) error {
	_, err := a.client.ServiceClient().NewContainerClient(bucket).GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerNotFound) {
			return domain.ErrNotFoundf("container %q not found", bucket)
		}
		return err
	}
	return nil
}

// List pages through the flat blob listing until limit names are collected.
func (a *Azure) List(ctx context.Context, bucket, prefix string, limit int) ([]string, error) {
	pager := a.client.NewListBlobsFlatPager(bucket, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	var names []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			names = append(names, *item.Name)
			if limit > 0 && len(names) == limit {
				return names, nil
			}
		}
	}
	return names, nil
}

// Open streams a blob.
func (a *Azure) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	resp, err := a.client.DownloadStream(ctx, bucket, name, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, domain.ErrNotFoundf("blob az://%s/%s not found", bucket, name)
		}
		return nil, err
	}
	return resp.Body, nil
}
