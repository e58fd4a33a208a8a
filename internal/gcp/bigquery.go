package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"iolib/internal/domain"
)

var _ domain.Warehouse = (*BigQuery)(nil)

// BigQuery implements domain.Warehouse.
type BigQuery struct {
	client *bigquery.Client
}

// NewBigQuery creates a warehouse client. Without creds.ProjectID the project
// is detected from the credentials.
func NewBigQuery(ctx context.Context, creds Credentials) (*BigQuery, error) {
	project := creds.ProjectID
	if project == "" {
		project = bigquery.DetectProjectID
	}
	client, err := bigquery.NewClient(ctx, project, creds.ClientOptions(bigquery.Scope)...)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	return &BigQuery{client: client}, nil
}

// Close releases the client.
func (b *BigQuery) Close() error { return b.client.Close() }

// Project returns the client's default project.
func (b *BigQuery) Project() string { return b.client.Project() }

// GetDataset fetches dataset metadata.
func (b *BigQuery) GetDataset(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error) {
	md, err := b.client.DatasetInProject(ref.ProjectID, ref.DatasetID).Metadata(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &domain.Dataset{Ref: ref, Location: md.Location}, nil
}

// GetTable fetches table metadata. The returned table is marked created.
func (b *BigQuery) GetTable(ctx context.Context, ref domain.TableRef) (*domain.Table, error) {
	md, err := b.table(ref).Metadata(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &domain.Table{Ref: ref, Schema: fromBigQuerySchema(md.Schema), Created: true}, nil
}

// CreateTable creates t with its schema.
func (b *BigQuery) CreateTable(ctx context.Context, t *domain.Table) (*domain.Table, error) {
	if err := b.table(t.Ref).Create(ctx, &bigquery.TableMetadata{Schema: toBigQuerySchema(t.Schema)}); err != nil {
		return nil, translate(err)
	}
	created := *t
	created.Created = true
	return &created, nil
}

// DeleteTable deletes the table.
func (b *BigQuery) DeleteTable(ctx context.Context, ref domain.TableRef) error {
	return translate(b.table(ref).Delete(ctx))
}

// InsertRows streams rows positionally against t's schema. Row-level
// rejections are returned as failures; anything else is an error.
func (b *BigQuery) InsertRows(ctx context.Context, t *domain.Table, rows [][]any) ([]domain.InsertFailure, error) {
	return b.put(ctx, t, rows, 0)
}

// InsertFrame streams f in chunks of chunkSize rows and collects the failures
// of every chunk, with row indexes relative to f.
func (b *BigQuery) InsertFrame(ctx context.Context, t *domain.Table, f *domain.Frame, chunkSize int) ([]domain.InsertFailure, error) {
	if chunkSize <= 0 {
		chunkSize = f.Len()
	}
	var failures []domain.InsertFailure
	for from := 0; from < f.Len(); from += chunkSize {
		to := min(from+chunkSize, f.Len())
		chunk, err := b.put(ctx, t, f.Rows[from:to], from)
		if err != nil {
			return failures, err
		}
		failures = append(failures, chunk...)
	}
	return failures, nil
}

func (b *BigQuery) put(ctx context.Context, t *domain.Table, rows [][]any, offset int) ([]domain.InsertFailure, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	names := t.Schema.Names()
	savers := make([]*rowSaver, len(rows))
	for i, r := range rows {
		savers[i] = &rowSaver{columns: names, values: r}
	}
	err := b.table(t.Ref).Inserter().Put(ctx, savers)
	if err == nil {
		return nil, nil
	}
	var multi bigquery.PutMultiError
	if !errors.As(err, &multi) {
		return nil, translate(err)
	}
	failures := make([]domain.InsertFailure, len(multi))
	for i, rowErr := range multi {
		failures[i] = domain.InsertFailure{RowIndex: offset + rowErr.RowIndex}
		for _, e := range rowErr.Errors {
			failures[i].Errors = append(failures[i].Errors, insertErrorDetail(e))
		}
	}
	return failures, nil
}

func insertErrorDetail(err error) domain.ErrorDetail {
	var bqErr *bigquery.Error
	if errors.As(err, &bqErr) {
		return domain.ErrorDetail{Message: bqErr.Message, Domain: bqErr.Location, Reason: bqErr.Reason}
	}
	return domain.ErrorDetail{Message: err.Error()}
}

// Query runs sql as a standard SQL query job.
func (b *BigQuery) Query(ctx context.Context, sql string) (domain.RowSource, error) {
	it, err := b.client.Query(sql).Read(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return &bigQueryRows{it: it}, nil
}

func (b *BigQuery) table(ref domain.TableRef) *bigquery.Table {
	return b.client.DatasetInProject(ref.ProjectID, ref.DatasetID).Table(ref.TableID)
}

// rowSaver implements bigquery.ValueSaver for a positional row. Rows are
// sent with NoDedupeID.
type rowSaver struct {
	columns []string
	values  []any
}

func (r *rowSaver) Save() (map[string]bigquery.Value, string, error) {
	m := make(map[string]bigquery.Value, len(r.columns))
	for i, c := range r.columns {
		if i >= len(r.values) {
			break
		}
		if v := domain.NormalizeMissing(r.values[i]); v != nil {
			m[c] = v
		}
	}
	return m, bigquery.NoDedupeID, nil
}

type bigQueryRows struct {
	it      *bigquery.RowIterator
	columns []string
}

func (r *bigQueryRows) Columns() []string {
	if r.columns == nil && r.it.Schema != nil {
		r.columns = make([]string, len(r.it.Schema))
		for i, f := range r.it.Schema {
			r.columns[i] = f.Name
		}
	}
	return r.columns
}

func (r *bigQueryRows) Next() ([]any, error) {
	var row []bigquery.Value
	if err := r.it.Next(&row); err != nil {
		if errors.Is(err, iterator.Done) {
			return nil, iterator.Done
		}
		return nil, translate(err)
	}
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out, nil
}

func toBigQuerySchema(s domain.Schema) bigquery.Schema {
	out := make(bigquery.Schema, len(s))
	for i, f := range s {
		mode := strings.ToUpper(f.Mode)
		out[i] = &bigquery.FieldSchema{
			Name:        f.Name,
			Type:        bigquery.FieldType(strings.ToUpper(f.Type)),
			Description: f.Description,
			Required:    mode == "REQUIRED",
			Repeated:    mode == "REPEATED",
			Schema:      toBigQuerySchema(f.Fields),
		}
	}
	return out
}

func fromBigQuerySchema(s bigquery.Schema) domain.Schema {
	if len(s) == 0 {
		return nil
	}
	out := make(domain.Schema, len(s))
	for i, f := range s {
		mode := "NULLABLE"
		switch {
		case f.Required:
			mode = "REQUIRED"
		case f.Repeated:
			mode = "REPEATED"
		}
		out[i] = domain.SchemaField{
			Name:        f.Name,
			Type:        string(f.Type),
			Mode:        mode,
			Description: f.Description,
			Fields:      fromBigQuerySchema(f.Schema),
		}
	}
	return out
}
