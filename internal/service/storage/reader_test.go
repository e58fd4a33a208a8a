package storage

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iolib/internal/domain"
	"iolib/internal/tabular"
	"iolib/internal/testutil"
)

var discard = slog.New(slog.DiscardHandler)

func newStore() *testutil.MockObjectStore {
	return &testutil.MockObjectStore{Buckets: map[string]map[string][]byte{
		"bucket": {
			"file1.csv":        []byte("a,b\n1,x\n"),
			"part/file-1.csv":  []byte("a,b\n1,x\n"),
			"part/file-2.csv":  []byte("a,c\n2,y\n"),
			"other/readme.txt": []byte("hello"),
		},
	}}
}

func TestService_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("single_object", func(t *testing.T) {
		store := newStore()
		got, err := NewService(store, discard).Read(ctx, ReadRequest{Bucket: "bucket", BlobName: "file1.csv"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got.Columns)
		assert.Equal(t, [][]any{{int64(1), "x"}}, got.Rows)
		assert.Equal(t, []string{"file1.csv"}, store.Opened)
	})

	t.Run("prefix_concatenates_aligned", func(t *testing.T) {
		store := newStore()
		got, err := NewService(store, discard).Read(ctx, ReadRequest{Bucket: "bucket", Prefix: "part/"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, got.Columns)
		assert.Equal(t, [][]any{{int64(1), "x", nil}, {int64(2), nil, "y"}}, got.Rows)
		assert.Equal(t, []string{"part/file-1.csv", "part/file-2.csv"}, store.Opened)
	})

	t.Run("empty_prefix_result", func(t *testing.T) {
		got, err := NewService(newStore(), discard).Read(ctx, ReadRequest{Bucket: "bucket", Prefix: "nothing/"})
		require.NoError(t, err)
		assert.True(t, got.Empty())
	})

	t.Run("usecols_passed_to_reader", func(t *testing.T) {
		got, err := NewService(newStore(), discard).Read(ctx, ReadRequest{
			Bucket:   "bucket",
			BlobName: "file1.csv",
			CSV:      tabular.CSVOptions{UseCols: []string{"b"}},
		})
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"x"}}, got.Rows)
	})

	t.Run("blob_or_prefix_required", func(t *testing.T) {
		store := newStore()
		_, err := NewService(store, discard).Read(ctx, ReadRequest{Bucket: "bucket"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingObject)
		assert.Equal(t, "Required blob_name or prefix in read_storage", err.Error())
		assert.Empty(t, store.Listed)
	})

	t.Run("only_csv", func(t *testing.T) {
		store := newStore()
		_, err := NewService(store, discard).Read(ctx, ReadRequest{Bucket: "bucket", BlobName: "other/readme.txt"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		assert.Equal(t, "Only CSV currently supported", err.Error())
		assert.Empty(t, store.Opened)
	})

	t.Run("non_csv_under_prefix", func(t *testing.T) {
		_, err := NewService(newStore(), discard).Read(ctx, ReadRequest{Bucket: "bucket", Prefix: "other/"})
		require.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("missing_bucket", func(t *testing.T) {
		_, err := NewService(newStore(), discard).Read(ctx, ReadRequest{Bucket: "nope", BlobName: "file1.csv"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing_object", func(t *testing.T) {
		_, err := NewService(newStore(), discard).Read(ctx, ReadRequest{Bucket: "bucket", BlobName: "absent.csv"})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestParseURI(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"gs://bucket/dir/file.csv", Location{Scheme: "gs", Bucket: "bucket", Key: "dir/file.csv"}},
		{"s3://bucket/part-", Location{Scheme: "s3", Bucket: "bucket", Key: "part-"}},
		{"az://container/x.csv", Location{Scheme: "az", Bucket: "container", Key: "x.csv"}},
		{"bucket/file.csv", Location{Scheme: "gs", Bucket: "bucket", Key: "file.csv"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseURI(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseURI("ftp://host/file.csv")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
