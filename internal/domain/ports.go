package domain

import (
	"context"
	"io"
)

// Warehouse is the capability set iolib needs from the columnar warehouse.
// Implemented by gcp.BigQuery.
//
// GetDataset and GetTable return a *NotFoundError when the resource is absent.
type Warehouse interface {
	// Project is the default project implied by the credentials.
	Project() string
	GetDataset(ctx context.Context, ref DatasetRef) (*Dataset, error)
	GetTable(ctx context.Context, ref TableRef) (*Table, error)
	CreateTable(ctx context.Context, t *Table) (*Table, error)
	DeleteTable(ctx context.Context, ref TableRef) error
	// InsertRows streams rows into t. Row-level failures come back as data,
	// transport failures as err.
	InsertRows(ctx context.Context, t *Table, rows [][]any) ([]InsertFailure, error)
	// InsertFrame streams a frame whose columns match t's schema, letting the
	// client chunk the request by chunkSize rows.
	InsertFrame(ctx context.Context, t *Table, f *Frame, chunkSize int) ([]InsertFailure, error)
	// Query runs sql and returns its rows. Next on the result returns
	// iterator.Done after the last row.
	Query(ctx context.Context, sql string) (RowSource, error)
}

// RowSource is a single-pass, finite sequence of query rows.
type RowSource interface {
	// Columns is valid after the first successful Next.
	Columns() []string
	Next() ([]any, error)
}

// ObjectStore reads objects from a bucket-style store.
// Implemented by objectstore.GCS, objectstore.S3 and objectstore.Azure.
type ObjectStore interface {
	// CheckBucket fails when the bucket does not exist or is not readable.
	CheckBucket(ctx context.Context, bucket string) error
	List(ctx context.Context, bucket, prefix string, limit int) ([]string, error)
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// DriveFiles is the files capability of the file-hosting service.
// Implemented by gcp.Drive.
type DriveFiles interface {
	ListFiles(ctx context.Context, query string, driveID string) ([]DriveFile, error)
	CreateFile(ctx context.Context, f DriveFile) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// DrivePermissions is the permissions capability of the file-hosting service.
// Implemented by gcp.Drive.
type DrivePermissions interface {
	ListPermissions(ctx context.Context, itemID string) ([]Permission, error)
	CreatePermission(ctx context.Context, itemID string, p Permission, notify bool) (string, error)
	UpdatePermission(ctx context.Context, itemID, permissionID string, role Role) (string, error)
	DeletePermission(ctx context.Context, itemID, permissionID string) error
}

// SheetValues is the values capability of the spreadsheet service.
// Implemented by gcp.Sheets.
type SheetValues interface {
	GetValues(ctx context.Context, spreadsheetID, rangeName string) ([][]any, error)
	// UpdateValues writes values with USER_ENTERED input and returns the
	// spreadsheet id echoed by the server.
	UpdateValues(ctx context.Context, spreadsheetID, rangeName string, values [][]any) (string, error)
}

// FileTransfer is an open session on a legacy file-transfer server.
// Implemented by ftpclient.Conn.
type FileTransfer interface {
	NameList(path string) ([]string, error)
	Retrieve(path string, w io.Writer) error
	Store(path string, r io.Reader) error
	Quit() error
}
