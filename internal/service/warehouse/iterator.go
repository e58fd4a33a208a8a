package warehouse

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/api/iterator"

	"iolib/internal/domain"
)

// Row is one query result row.
type Row struct {
	Columns []string
	Values  []any
}

// RowAsMap keys the row values by column name.
func RowAsMap(r Row) map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		if i < len(r.Values) {
			m[c] = r.Values[i]
		}
	}
	return m
}

// RowAsSlice returns the row values in column order.
func RowAsSlice(r Row) []any { return r.Values }

// PreparedQuery is a query bound to a table manager. Creating one does no
// remote work.
type PreparedQuery struct {
	m     *TableManager
	query string
}

// Iterator returns a fresh iterator. Validation and the query itself run on
// the first call to Next.
func (q *PreparedQuery) Iterator(ctx context.Context) *RowIterator {
	return &RowIterator{ctx: ctx, q: q}
}

// RowIterator pulls rows of a prepared query, one at a time.
type RowIterator struct {
	ctx     context.Context
	q       *PreparedQuery
	src     domain.RowSource
	started bool
	err     error
}

// Next returns the next row, or iterator.Done once the rows are exhausted.
// A not-found table or a missing query surfaces here, on the first call.
func (it *RowIterator) Next() (Row, error) {
	if it.err != nil {
		return Row{}, it.err
	}
	if !it.started {
		it.started = true
		sql, err := it.q.m.renderQuery(it.q.query, "ireading")
		if err != nil {
			it.err = err
			return Row{}, err
		}
		src, err := it.q.m.wh.Query(it.ctx, sql)
		if err != nil {
			it.err = fmt.Errorf("query: %w", err)
			return Row{}, it.err
		}
		it.src = src
	}

	values, err := it.src.Next()
	if err != nil {
		if !errors.Is(err, iterator.Done) {
			err = fmt.Errorf("read query results: %w", err)
		}
		it.err = err
		return Row{}, err
	}
	for i := range values {
		values[i] = domain.NormalizeMissing(values[i])
	}
	return Row{Columns: it.src.Columns(), Values: values}, nil
}

// All adapts the iterator to a range-over-func sequence. Iteration stops
// after the first error, which is yielded.
func (it *RowIterator) All() iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		for {
			row, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// ShapedIterator projects every row through a shaping function.
type ShapedIterator[T any] struct {
	it    *RowIterator
	shape func(Row) T
}

// Shape wraps it so that Next returns shape(row) instead of the row.
func Shape[T any](it *RowIterator, shape func(Row) T) *ShapedIterator[T] {
	return &ShapedIterator[T]{it: it, shape: shape}
}

// Next returns the next shaped row, or iterator.Done.
func (s *ShapedIterator[T]) Next() (T, error) {
	row, err := s.it.Next()
	if err != nil {
		var zero T
		return zero, err
	}
	return s.shape(row), nil
}
