package warehouse

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"iolib/internal/domain"
	"iolib/internal/testutil"
)

var discard = slog.New(slog.DiscardHandler)

var tblRef = domain.TableRef{ProjectID: "proj", DatasetID: "ds", TableID: "tbl"}

func newManager(wh domain.Warehouse, table *domain.Table) *TableManager {
	return &TableManager{wh: wh, logger: discard, project: "proj", table: table}
}

func createdTable() *domain.Table {
	return &domain.Table{Ref: tblRef, Schema: testSchema, Created: true}
}

func TestTableManager_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("expands_table_id_in_query", func(t *testing.T) {
		wh := &testutil.MockWarehouse{}
		m := newManager(wh, createdTable())

		_, err := m.Read(ctx, "SELECT foo FROM `{table_id}`")
		require.NoError(t, err)
		assert.Equal(t, []string{"SELECT foo FROM `proj.ds.tbl`"}, wh.Queries)
	})

	t.Run("default_query_reads_whole_table", func(t *testing.T) {
		wh := &testutil.MockWarehouse{}
		m := newManager(wh, createdTable())

		_, err := m.Read(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"SELECT * FROM `proj.ds.tbl`"}, wh.Queries)
	})

	t.Run("query_without_table_is_passed_through", func(t *testing.T) {
		wh := &testutil.MockWarehouse{}
		m := newManager(wh, nil)

		_, err := m.Read(ctx, "SELECT foo FROM `table`")
		require.NoError(t, err)
		assert.Equal(t, []string{"SELECT foo FROM `table`"}, wh.Queries)
	})

	t.Run("normalizes_missing_values", func(t *testing.T) {
		wh := &testutil.MockWarehouse{
			QueryFn: func(_ context.Context, _ string) (domain.RowSource, error) {
				return &testutil.SliceRowSource{
					Cols: []string{"x", "y"},
					Rows: [][]any{{nil, 1.5}, {"a", math.NaN()}},
				}, nil
			},
		}
		m := newManager(wh, createdTable())

		got, err := m.Read(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, got.Columns)
		assert.Equal(t, [][]any{{nil, 1.5}, {"a", nil}}, got.Rows)
	})

	t.Run("table_not_found", func(t *testing.T) {
		wh := &testutil.MockWarehouse{}
		m := newManager(wh, &domain.Table{Ref: tblRef, Schema: testSchema})

		_, err := m.Read(ctx, "SELECT 1")
		require.Error(t, err)
		var notFound *domain.TableNotFoundError
		require.ErrorAs(t, err, &notFound)
		msg := "Not found: Table proj:ds.tbl"
		assert.Equal(t, msg, notFound.Message)
		assert.Equal(t, []domain.ErrorDetail{{Message: msg, Domain: "global", Reason: "notFound"}}, notFound.Errors)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, wh.Queries)
	})

	t.Run("missing_query", func(t *testing.T) {
		m := newManager(&testutil.MockWarehouse{}, nil)

		_, err := m.Read(ctx, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingQuery)
		assert.Equal(t, "query is required when reading when no table is passed", err.Error())
	})

	t.Run("query_error", func(t *testing.T) {
		wh := &testutil.MockWarehouse{
			QueryFn: func(_ context.Context, _ string) (domain.RowSource, error) {
				return nil, errTest
			},
		}
		_, err := newManager(wh, createdTable()).Read(ctx, "")
		require.ErrorIs(t, err, errTest)
	})

	t.Run("row_error", func(t *testing.T) {
		wh := &testutil.MockWarehouse{
			QueryFn: func(_ context.Context, _ string) (domain.RowSource, error) {
				return &testutil.SliceRowSource{Cols: []string{"x"}, Rows: [][]any{{1}}, Err: errTest}, nil
			},
		}
		_, err := newManager(wh, createdTable()).Read(ctx, "")
		require.ErrorIs(t, err, errTest)
	})
}

func TestRowIterator(t *testing.T) {
	ctx := context.Background()
	rows := func(_ context.Context, _ string) (domain.RowSource, error) {
		return &testutil.SliceRowSource{
			Cols: []string{"a", "b"},
			Rows: [][]any{{1, "x"}, {2, math.NaN()}},
		}, nil
	}

	t.Run("no_remote_work_until_first_pull", func(t *testing.T) {
		wh := &testutil.MockWarehouse{QueryFn: rows}
		it := newManager(wh, createdTable()).Prepare("SELECT a, b FROM `{table_id}`").Iterator(ctx)
		assert.Empty(t, wh.Calls)

		row, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, Row{Columns: []string{"a", "b"}, Values: []any{1, "x"}}, row)
		assert.Equal(t, []string{"SELECT a, b FROM `proj.ds.tbl`"}, wh.Queries)

		row, err = it.Next()
		require.NoError(t, err)
		assert.Equal(t, []any{2, nil}, row.Values)

		_, err = it.Next()
		assert.ErrorIs(t, err, iterator.Done)
		_, err = it.Next()
		assert.ErrorIs(t, err, iterator.Done)
		assert.Equal(t, 1, wh.CallCount("Query"))
	})

	t.Run("missing_query_is_deferred", func(t *testing.T) {
		it := newManager(&testutil.MockWarehouse{}, nil).Prepare("").Iterator(ctx)

		_, err := it.Next()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingQuery)
		assert.Equal(t, "query is required when ireading when no table is passed", err.Error())
	})

	t.Run("not_found_is_deferred", func(t *testing.T) {
		wh := &testutil.MockWarehouse{}
		it := newManager(wh, &domain.Table{Ref: tblRef}).Prepare("SELECT 1").Iterator(ctx)

		_, err := it.Next()
		var notFound *domain.TableNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Empty(t, wh.Queries)
	})

	t.Run("shape_as_map", func(t *testing.T) {
		wh := &testutil.MockWarehouse{QueryFn: rows}
		it := Shape(newManager(wh, createdTable()).Prepare("").Iterator(ctx), RowAsMap)

		got, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1, "b": "x"}, got)
	})

	t.Run("shape_as_slice", func(t *testing.T) {
		wh := &testutil.MockWarehouse{QueryFn: rows}
		it := Shape(newManager(wh, createdTable()).Prepare("").Iterator(ctx), RowAsSlice)

		got, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, []any{1, "x"}, got)
	})

	t.Run("shape_with_custom_constructor", func(t *testing.T) {
		type record struct {
			A int
		}
		wh := &testutil.MockWarehouse{QueryFn: rows}
		it := Shape(newManager(wh, createdTable()).Prepare("").Iterator(ctx), func(r Row) record {
			return record{A: r.Values[0].(int)}
		})

		got, err := it.Next()
		require.NoError(t, err)
		assert.Equal(t, record{A: 1}, got)
	})

	t.Run("range_over_all", func(t *testing.T) {
		wh := &testutil.MockWarehouse{QueryFn: rows}
		it := newManager(wh, createdTable()).Prepare("").Iterator(ctx)

		var n int
		for row, err := range it.All() {
			require.NoError(t, err)
			assert.Len(t, row.Values, 2)
			n++
		}
		assert.Equal(t, 2, n)
	})
}

func TestIRead_DefersQuery(t *testing.T) {
	ref := domain.TableRef{ProjectID: "proj", DatasetID: "ds", TableID: "tbl"}
	wh := &testutil.MockWarehouse{ProjectID: "proj", GetTableFn: existingTables(ref)}

	it, err := IRead(context.Background(), wh, ReadRequest{Table: TableName("ds.tbl"), Query: "SELECT x FROM `{table_id}`"}, discard)
	require.NoError(t, err)
	assert.Zero(t, wh.CallCount("Query"))

	_, err = it.Next()
	assert.ErrorIs(t, err, iterator.Done)
	assert.Equal(t, []string{"SELECT x FROM `proj.ds.tbl`"}, wh.Queries)
}

func TestRead_EndToEnd(t *testing.T) {
	ref := domain.TableRef{ProjectID: "proj", DatasetID: "ds", TableID: "tbl"}
	wh := &testutil.MockWarehouse{
		ProjectID:  "default",
		GetTableFn: existingTables(ref),
		QueryFn: func(_ context.Context, _ string) (domain.RowSource, error) {
			return &testutil.SliceRowSource{Cols: []string{"id"}, Rows: [][]any{{int64(1)}}}, nil
		},
	}

	got, err := Read(context.Background(), wh, ReadRequest{Table: TableName("proj.ds.tbl")}, discard)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}}, got.Rows)
	assert.Equal(t, []string{"SELECT * FROM `proj.ds.tbl`"}, wh.Queries)
}
