// Package testutil provides shared mock implementations of domain ports for
// use in tests across the codebase. This follows the Go convention of a
// shared test utility package (like net/http/httptest).
package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"

	"google.golang.org/api/iterator"

	"iolib/internal/domain"
)

// === Warehouse Mock ===

// MockWarehouse implements domain.Warehouse for testing. Every call is
// appended to Calls as "<Method>" so tests can assert ordering.
type MockWarehouse struct {
	ProjectID     string
	GetDatasetFn  func(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error)
	GetTableFn    func(ctx context.Context, ref domain.TableRef) (*domain.Table, error)
	CreateTableFn func(ctx context.Context, t *domain.Table) (*domain.Table, error)
	DeleteTableFn func(ctx context.Context, ref domain.TableRef) error
	InsertRowsFn  func(ctx context.Context, t *domain.Table, rows [][]any) ([]domain.InsertFailure, error)
	InsertFrameFn func(ctx context.Context, t *domain.Table, f *domain.Frame, chunkSize int) ([]domain.InsertFailure, error)
	QueryFn       func(ctx context.Context, sql string) (domain.RowSource, error)

	Calls      []string
	Queries    []string
	Inserted   [][][]any
	Created    []*domain.Table
	Deleted    []domain.TableRef
	DatasetLog []domain.DatasetRef
	TableLog   []domain.TableRef
}

// Project implements the interface method for testing.
func (m *MockWarehouse) Project() string { return m.ProjectID }

// GetDataset implements the interface method for testing. Without GetDatasetFn
// every dataset exists.
func (m *MockWarehouse) GetDataset(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error) {
	m.Calls = append(m.Calls, "GetDataset")
	m.DatasetLog = append(m.DatasetLog, ref)
	if m.GetDatasetFn != nil {
		return m.GetDatasetFn(ctx, ref)
	}
	return &domain.Dataset{Ref: ref}, nil
}

// GetTable implements the interface method for testing. Without GetTableFn
// no table exists.
func (m *MockWarehouse) GetTable(ctx context.Context, ref domain.TableRef) (*domain.Table, error) {
	m.Calls = append(m.Calls, "GetTable")
	m.TableLog = append(m.TableLog, ref)
	if m.GetTableFn != nil {
		return m.GetTableFn(ctx, ref)
	}
	return nil, domain.ErrNotFoundf("Not found: Table %s", ref.FullyQualified())
}

// CreateTable implements the interface method for testing. Without
// CreateTableFn it returns a created copy of t.
func (m *MockWarehouse) CreateTable(ctx context.Context, t *domain.Table) (*domain.Table, error) {
	m.Calls = append(m.Calls, "CreateTable")
	m.Created = append(m.Created, t)
	if m.CreateTableFn != nil {
		return m.CreateTableFn(ctx, t)
	}
	created := *t
	created.Created = true
	return &created, nil
}

// DeleteTable implements the interface method for testing.
func (m *MockWarehouse) DeleteTable(ctx context.Context, ref domain.TableRef) error {
	m.Calls = append(m.Calls, "DeleteTable")
	m.Deleted = append(m.Deleted, ref)
	if m.DeleteTableFn != nil {
		return m.DeleteTableFn(ctx, ref)
	}
	return nil
}

// InsertRows implements the interface method for testing.
func (m *MockWarehouse) InsertRows(ctx context.Context, t *domain.Table, rows [][]any) ([]domain.InsertFailure, error) {
	m.Calls = append(m.Calls, "InsertRows")
	m.Inserted = append(m.Inserted, rows)
	if m.InsertRowsFn != nil {
		return m.InsertRowsFn(ctx, t, rows)
	}
	return nil, nil
}

// InsertFrame implements the interface method for testing.
func (m *MockWarehouse) InsertFrame(ctx context.Context, t *domain.Table, f *domain.Frame, chunkSize int) ([]domain.InsertFailure, error) {
	m.Calls = append(m.Calls, "InsertFrame")
	if m.InsertFrameFn != nil {
		return m.InsertFrameFn(ctx, t, f, chunkSize)
	}
	return nil, nil
}

// Query implements the interface method for testing.
func (m *MockWarehouse) Query(ctx context.Context, sql string) (domain.RowSource, error) {
	m.Calls = append(m.Calls, "Query")
	m.Queries = append(m.Queries, sql)
	if m.QueryFn != nil {
		return m.QueryFn(ctx, sql)
	}
	return &SliceRowSource{}, nil
}

// CallCount returns how many times method was called.
func (m *MockWarehouse) CallCount(method string) int {
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}

var _ domain.Warehouse = (*MockWarehouse)(nil)

// SliceRowSource implements domain.RowSource over fixed rows.
type SliceRowSource struct {
	Cols []string
	Rows [][]any
	Err  error // returned instead of iterator.Done once rows run out
	pos  int
}

// Columns implements the interface method for testing.
func (s *SliceRowSource) Columns() []string { return s.Cols }

// Next implements the interface method for testing.
func (s *SliceRowSource) Next() ([]any, error) {
	if s.pos >= len(s.Rows) {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, iterator.Done
	}
	row := append([]any(nil), s.Rows[s.pos]...)
	s.pos++
	return row, nil
}

var _ domain.RowSource = (*SliceRowSource)(nil)

// === Object Store Mock ===

// MockObjectStore implements domain.ObjectStore over an in-memory bucket map.
type MockObjectStore struct {
	Buckets map[string]map[string][]byte
	Opened  []string
	Listed  []string
	ListErr error
}

// CheckBucket implements the interface method for testing.
func (m *MockObjectStore) CheckBucket(_ context.Context, bucket string) error {
	if _, ok := m.Buckets[bucket]; !ok {
		return domain.ErrNotFoundf("bucket %q not found", bucket)
	}
	return nil
}

// List implements the interface method for testing. Names come back sorted.
func (m *MockObjectStore) List(_ context.Context, bucket, prefix string, limit int) ([]string, error) {
	m.Listed = append(m.Listed, prefix)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var names []string
	for name := range m.Buckets[bucket] {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

// Open implements the interface method for testing.
func (m *MockObjectStore) Open(_ context.Context, bucket, name string) (io.ReadCloser, error) {
	m.Opened = append(m.Opened, name)
	data, ok := m.Buckets[bucket][name]
	if !ok {
		return nil, domain.ErrNotFoundf("object %q not found", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

var _ domain.ObjectStore = (*MockObjectStore)(nil)

// === Drive Mocks ===

// MockDriveFiles implements domain.DriveFiles for testing.
type MockDriveFiles struct {
	ListFilesFn  func(ctx context.Context, query, driveID string) ([]domain.DriveFile, error)
	CreateFileFn func(ctx context.Context, f domain.DriveFile) (string, error)
	DeleteFileFn func(ctx context.Context, fileID string) error

	Calls   []string
	Queries []string
	Created []domain.DriveFile
	Deleted []string
}

// ListFiles implements the interface method for testing.
func (m *MockDriveFiles) ListFiles(ctx context.Context, query, driveID string) ([]domain.DriveFile, error) {
	m.Calls = append(m.Calls, "ListFiles")
	m.Queries = append(m.Queries, query)
	if m.ListFilesFn != nil {
		return m.ListFilesFn(ctx, query, driveID)
	}
	return nil, nil
}

// CreateFile implements the interface method for testing.
func (m *MockDriveFiles) CreateFile(ctx context.Context, f domain.DriveFile) (string, error) {
	m.Calls = append(m.Calls, "CreateFile")
	m.Created = append(m.Created, f)
	if m.CreateFileFn != nil {
		return m.CreateFileFn(ctx, f)
	}
	return "file-1", nil
}

// DeleteFile implements the interface method for testing.
func (m *MockDriveFiles) DeleteFile(ctx context.Context, fileID string) error {
	m.Calls = append(m.Calls, "DeleteFile")
	m.Deleted = append(m.Deleted, fileID)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(ctx, fileID)
	}
	return nil
}

var _ domain.DriveFiles = (*MockDriveFiles)(nil)

// PermissionCall records one permission mutation.
type PermissionCall struct {
	Method       string
	ItemID       string
	PermissionID string
	Permission   domain.Permission
	Role         domain.Role
	Notify       bool
}

// MockDrivePermissions implements domain.DrivePermissions for testing.
type MockDrivePermissions struct {
	Current []domain.Permission
	ListErr error

	Calls []PermissionCall
}

// ListPermissions implements the interface method for testing.
func (m *MockDrivePermissions) ListPermissions(_ context.Context, _ string) ([]domain.Permission, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]domain.Permission(nil), m.Current...), nil
}

// CreatePermission implements the interface method for testing.
func (m *MockDrivePermissions) CreatePermission(_ context.Context, itemID string, p domain.Permission, notify bool) (string, error) {
	m.Calls = append(m.Calls, PermissionCall{Method: "create", ItemID: itemID, Permission: p, Notify: notify})
	return "perm-new", nil
}

// UpdatePermission implements the interface method for testing.
func (m *MockDrivePermissions) UpdatePermission(_ context.Context, itemID, permissionID string, role domain.Role) (string, error) {
	m.Calls = append(m.Calls, PermissionCall{Method: "update", ItemID: itemID, PermissionID: permissionID, Role: role})
	return permissionID, nil
}

// DeletePermission implements the interface method for testing.
func (m *MockDrivePermissions) DeletePermission(_ context.Context, itemID, permissionID string) error {
	m.Calls = append(m.Calls, PermissionCall{Method: "delete", ItemID: itemID, PermissionID: permissionID})
	return nil
}

// Count returns how many recorded calls used method.
func (m *MockDrivePermissions) Count(method string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

var _ domain.DrivePermissions = (*MockDrivePermissions)(nil)

// === Sheets Mock ===

// MockSheetValues implements domain.SheetValues for testing.
type MockSheetValues struct {
	Values    [][]any
	GetErr    error
	UpdateErr error

	GetRanges     []string
	UpdatedID     string
	UpdatedRange  string
	UpdatedValues [][]any
}

// GetValues implements the interface method for testing.
func (m *MockSheetValues) GetValues(_ context.Context, _ string, rangeName string) ([][]any, error) {
	m.GetRanges = append(m.GetRanges, rangeName)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Values, nil
}

// UpdateValues implements the interface method for testing.
func (m *MockSheetValues) UpdateValues(_ context.Context, spreadsheetID, rangeName string, values [][]any) (string, error) {
	if m.UpdateErr != nil {
		return "", m.UpdateErr
	}
	m.UpdatedID = spreadsheetID
	m.UpdatedRange = rangeName
	m.UpdatedValues = values
	return spreadsheetID, nil
}

var _ domain.SheetValues = (*MockSheetValues)(nil)

// === File Transfer Mock ===

// MockFileTransfer implements domain.FileTransfer over in-memory files.
type MockFileTransfer struct {
	Files  map[string][]byte
	Names  map[string][]string
	Stored map[string][]byte
	Quits  int
	Calls  []string
}

// NameList implements the interface method for testing.
func (m *MockFileTransfer) NameList(path string) ([]string, error) {
	m.Calls = append(m.Calls, "NLST "+path)
	return m.Names[path], nil
}

// Retrieve implements the interface method for testing.
func (m *MockFileTransfer) Retrieve(path string, w io.Writer) error {
	m.Calls = append(m.Calls, "RETR "+path)
	data, ok := m.Files[path]
	if !ok {
		return domain.ErrNotFoundf("550 %s: no such file", path)
	}
	_, err := w.Write(data)
	return err
}

// Store implements the interface method for testing.
func (m *MockFileTransfer) Store(path string, r io.Reader) error {
	m.Calls = append(m.Calls, "STOR "+path)
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.Stored == nil {
		m.Stored = map[string][]byte{}
	}
	m.Stored[path] = data
	return nil
}

// Quit implements the interface method for testing.
func (m *MockFileTransfer) Quit() error {
	m.Quits++
	return nil
}

var _ domain.FileTransfer = (*MockFileTransfer)(nil)
