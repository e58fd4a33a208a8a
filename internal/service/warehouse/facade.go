package warehouse

import (
	"context"
	"log/slog"

	"iolib/internal/domain"
)

// ReadRequest is the input of Read and IRead.
type ReadRequest struct {
	Table   TableInput
	Dataset DatasetInput
	Project string
	Query   string
}

// Read resolves the table and returns the query result as a frame.
func Read(ctx context.Context, wh domain.Warehouse, req ReadRequest, logger *slog.Logger) (*domain.Frame, error) {
	m, err := NewTableManager(ctx, wh, ResolveOptions{
		Table:   req.Table,
		Dataset: req.Dataset,
		Project: req.Project,
	}, logger)
	if err != nil {
		return nil, err
	}
	return m.Read(ctx, req.Query)
}

// IRead resolves the table and returns a lazy row iterator over the query.
// The query runs on the first call to Next.
func IRead(ctx context.Context, wh domain.Warehouse, req ReadRequest, logger *slog.Logger) (*RowIterator, error) {
	m, err := NewTableManager(ctx, wh, ResolveOptions{
		Table:   req.Table,
		Dataset: req.Dataset,
		Project: req.Project,
	}, logger)
	if err != nil {
		return nil, err
	}
	return m.Prepare(req.Query).Iterator(ctx), nil
}

// WriteRequest is the input of Write. Exactly one of Frame and Rows is used;
// Frame wins when both are set.
type WriteRequest struct {
	Table   TableInput
	Dataset DatasetInput
	Project string
	Schema  domain.Schema
	Frame   *domain.Frame
	Rows    [][]any
	Options WriteOptions
}

// Write resolves the table and writes the request data into it.
func Write(ctx context.Context, wh domain.Warehouse, req WriteRequest, logger *slog.Logger) error {
	m, err := NewTableManager(ctx, wh, ResolveOptions{
		Table:   req.Table,
		Dataset: req.Dataset,
		Project: req.Project,
		Schema:  req.Schema,
	}, logger)
	if err != nil {
		return err
	}
	if req.Frame != nil {
		return m.WriteFrame(ctx, req.Frame, req.Options)
	}
	return m.WriteRows(ctx, req.Rows, req.Options)
}
