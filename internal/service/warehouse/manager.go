package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/iterator"

	"iolib/internal/domain"
)

// DefaultQuery reads a whole table. {table_id} expands to project.dataset.table.
const DefaultQuery = "SELECT * FROM `{table_id}`"

const tableIDPlaceholder = "{table_id}"

// TableManager reads and writes one warehouse table.
type TableManager struct {
	wh      domain.Warehouse
	logger  *slog.Logger
	project string
	dataset *domain.Dataset
	table   *domain.Table
}

// NewTableManager resolves opts and returns a manager for the table. A
// manager without a table is valid but can only run explicit queries.
func NewTableManager(ctx context.Context, wh domain.Warehouse, opts ResolveOptions, logger *slog.Logger) (*TableManager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := NewResolver(wh, logger).Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &TableManager{
		wh:      wh,
		logger:  logger,
		project: res.Project,
		dataset: res.Dataset,
		table:   res.Table,
	}, nil
}

// Project returns the effective project.
func (m *TableManager) Project() string { return m.project }

// Dataset returns the resolved dataset, or nil.
func (m *TableManager) Dataset() *domain.Dataset { return m.dataset }

// Table returns the resolved table, or nil.
func (m *TableManager) Table() *domain.Table { return m.table }

// renderQuery checks the table exists and expands the query template.
func (m *TableManager) renderQuery(query, verb string) (string, error) {
	if m.table == nil {
		if query == "" {
			return "", domain.ErrValidation(domain.ErrMissingQuery, "query is required when %s when no table is passed", verb)
		}
		return query, nil
	}
	if !m.table.Created {
		return "", domain.NewTableNotFound(m.table.Ref)
	}
	if query == "" {
		query = DefaultQuery
	}
	return strings.ReplaceAll(query, tableIDPlaceholder, m.table.Ref.FullyQualified()), nil
}

// Read runs query, or DefaultQuery when empty, and returns the whole result.
// Absent values come back as nil.
func (m *TableManager) Read(ctx context.Context, query string) (*domain.Frame, error) {
	sql, err := m.renderQuery(query, "reading")
	if err != nil {
		return nil, err
	}
	src, err := m.wh.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	var rows [][]any
	for {
		values, err := src.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read query results: %w", err)
		}
		rows = append(rows, values)
	}
	frame := &domain.Frame{Columns: src.Columns(), Rows: rows}
	return frame.NormalizeRows(), nil
}

// Prepare returns a query that runs only when its iterator is first pulled.
func (m *TableManager) Prepare(query string) *PreparedQuery {
	return &PreparedQuery{m: m, query: query}
}
