package warehouse

import (
	"context"
	"fmt"

	"iolib/internal/domain"
)

// DefaultBatchSize is the number of rows sent per insert call.
const DefaultBatchSize = 1000

// WriteOptions controls a write. The zero value means IfExistsFail and
// DefaultBatchSize.
type WriteOptions struct {
	IfExists  domain.IfExists
	BatchSize int
}

func (o WriteOptions) normalize() (WriteOptions, error) {
	policy, err := domain.ParseIfExists(string(o.IfExists))
	if err != nil {
		return o, err
	}
	o.IfExists = policy
	if o.BatchSize < 0 {
		return o, domain.ErrValidation(domain.ErrInvalidInput, "batch size must be positive, got %d", o.BatchSize)
	}
	if o.BatchSize == 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o, nil
}

// WriteFrame writes f into the table. Only the columns declared in the table
// schema are sent; extra columns in f are dropped.
func (m *TableManager) WriteFrame(ctx context.Context, f *domain.Frame, opts WriteOptions) error {
	opts, err := m.beginWrite(opts)
	if err != nil {
		return err
	}
	if f == nil {
		f = &domain.Frame{}
	}
	projected, missing := f.Select(m.table.Schema.Names())
	if missing != "" {
		return domain.ErrValidation(domain.ErrInvalidInput, "column %q of table %s is missing from data", missing, m.table.Ref.TableID)
	}
	projected.NormalizeRows()

	if err := m.prepareDestination(ctx, opts.IfExists); err != nil {
		return err
	}

	failures, err := m.wh.InsertFrame(ctx, m.table, projected, opts.BatchSize)
	if err != nil {
		return fmt.Errorf("insert rows into %s: %w", m.table.Ref.FullyQualified(), err)
	}
	if len(failures) > 0 {
		return &domain.WriteError{Payload: failures}
	}
	m.logger.Debug("frame written", "table", m.table.Ref.FullyQualified(), "rows", projected.Len())
	return nil
}

// WriteRows writes rows in contiguous batches of opts.BatchSize, in order.
// The first batch reporting failures aborts the write; earlier batches stay
// committed.
func (m *TableManager) WriteRows(ctx context.Context, rows [][]any, opts WriteOptions) error {
	opts, err := m.beginWrite(opts)
	if err != nil {
		return err
	}
	if err := m.prepareDestination(ctx, opts.IfExists); err != nil {
		return err
	}

	for from := 0; from < len(rows); from += opts.BatchSize {
		to := min(from+opts.BatchSize, len(rows))
		failures, err := m.wh.InsertRows(ctx, m.table, rows[from:to])
		if err != nil {
			return fmt.Errorf("insert rows %d-%d into %s: %w", from, to, m.table.Ref.FullyQualified(), err)
		}
		if len(failures) > 0 {
			return &domain.WriteError{Payload: failures}
		}
		m.logger.Debug("batch written", "table", m.table.Ref.FullyQualified(), "from", from, "to", to)
	}
	return nil
}

func (m *TableManager) beginWrite(opts WriteOptions) (WriteOptions, error) {
	opts, err := opts.normalize()
	if err != nil {
		return opts, err
	}
	if m.table == nil {
		return opts, domain.ErrValidation(domain.ErrMissingTable, "table is required to write")
	}
	return opts, nil
}

// prepareDestination applies the existence policy to the table.
func (m *TableManager) prepareDestination(ctx context.Context, policy domain.IfExists) error {
	action, err := policy.Decide(m.table.Created)
	if err != nil {
		return err
	}
	ref := m.table.Ref

	switch action {
	case domain.ActionFail:
		return domain.ErrConflict(domain.ErrAlreadyExists,
			"Table already exists. Use `if_exists=\"replace\"` or `if_exists=\"append\"` if you want to modify the table.")
	case domain.ActionCreate:
		t, err := m.wh.CreateTable(ctx, m.table)
		if err != nil {
			return fmt.Errorf("create table %s: %w", ref.FullyQualified(), err)
		}
		m.table = t
		m.logger.Debug("table created", "table", ref.FullyQualified())
	case domain.ActionRecreate:
		schema := m.table.Schema
		if err := m.wh.DeleteTable(ctx, ref); err != nil {
			return fmt.Errorf("delete table %s: %w", ref.FullyQualified(), err)
		}
		t, err := m.wh.CreateTable(ctx, &domain.Table{Ref: ref, Schema: schema})
		if err != nil {
			return fmt.Errorf("recreate table %s: %w", ref.FullyQualified(), err)
		}
		m.table = t
		m.logger.Debug("table replaced", "table", ref.FullyQualified())
	case domain.ActionReuse:
	}
	return nil
}
