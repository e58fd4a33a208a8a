package warehouse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"iolib/internal/domain"
)

type inputKind int

const (
	inputAbsent inputKind = iota
	inputName
	inputRef
	inputResolved
)

// TableInput is a table given by name, by reference, or as an already
// resolved handle. The zero value means no table.
type TableInput struct {
	kind  inputKind
	name  string
	ref   domain.TableRef
	table *domain.Table
}

// TableName selects a table by identifier: "table", "dataset.table" or
// "project.dataset.table".
func TableName(name string) TableInput { return TableInput{kind: inputName, name: name} }

// TableRefInput selects a table by reference; it is fetched during resolution.
func TableRefInput(ref domain.TableRef) TableInput { return TableInput{kind: inputRef, ref: ref} }

// ResolvedTable adopts an already resolved table handle as is.
func ResolvedTable(t *domain.Table) TableInput {
	if t == nil {
		return TableInput{}
	}
	return TableInput{kind: inputResolved, table: t}
}

// IsZero reports whether no table was given.
func (in TableInput) IsZero() bool { return in.kind == inputAbsent }

func (in TableInput) String() string {
	switch in.kind {
	case inputName:
		return in.name
	case inputRef:
		return in.ref.FullyQualified()
	case inputResolved:
		return in.table.Ref.FullyQualified()
	}
	return ""
}

// DatasetInput is a dataset given by name, by reference, or as an already
// resolved handle. The zero value means no dataset.
type DatasetInput struct {
	kind    inputKind
	name    string
	ref     domain.DatasetRef
	dataset *domain.Dataset
}

// DatasetName selects a dataset of the effective project by id.
func DatasetName(name string) DatasetInput { return DatasetInput{kind: inputName, name: name} }

// DatasetRefInput selects a dataset by reference; it is fetched during resolution.
func DatasetRefInput(ref domain.DatasetRef) DatasetInput {
	return DatasetInput{kind: inputRef, ref: ref}
}

// ResolvedDataset adopts an already resolved dataset handle as is.
func ResolvedDataset(d *domain.Dataset) DatasetInput {
	if d == nil {
		return DatasetInput{}
	}
	return DatasetInput{kind: inputResolved, dataset: d}
}

// IsZero reports whether no dataset was given.
func (in DatasetInput) IsZero() bool { return in.kind == inputAbsent }

// ResolveOptions describes the table a manager works on.
type ResolveOptions struct {
	Table   TableInput
	Dataset DatasetInput
	// Project overrides the warehouse's default project.
	Project string
	// Schema is only used when the table does not exist yet.
	Schema domain.Schema
}

// Resolved is the canonical outcome of resolution. Dataset and Table are
// both nil when no table was requested.
type Resolved struct {
	Project string
	Dataset *domain.Dataset
	Table   *domain.Table
}

// Resolver turns heterogeneous table and dataset inputs into handles.
// It only performs fetches; nothing is created during resolution.
type Resolver struct {
	wh     domain.Warehouse
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(wh domain.Warehouse, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{wh: wh, logger: logger}
}

// Resolve resolves opts into a dataset and table handle.
func (r *Resolver) Resolve(ctx context.Context, opts ResolveOptions) (*Resolved, error) {
	project := opts.Project
	table := opts.Table
	dataset := opts.Dataset

	// Identifier components take precedence over the separate arguments.
	if table.kind == inputName {
		id, err := ParseTableID(table.name)
		if err != nil {
			return nil, err
		}
		if id.DatasetID != "" {
			dataset = DatasetName(id.DatasetID)
			table = TableName(id.TableID)
		}
		if id.ProjectID != "" {
			project = id.ProjectID
		}
	}
	if project == "" {
		project = r.wh.Project()
	}

	res := &Resolved{Project: project}

	switch table.kind {
	case inputResolved:
		res.Table = table.table
		if res.Table.Ref.ProjectID == "" {
			t := *res.Table
			t.Ref.ProjectID = project
			res.Table = &t
		}
		dataset = DatasetRefInput(res.Table.Ref.Dataset())
	case inputRef:
		ref := table.ref
		if ref.TableID == "" || ref.DatasetID == "" {
			return nil, domain.ErrValidation(domain.ErrInvalidIdentifier, "Invalid table `%s`", ref.FullyQualified())
		}
		if ref.ProjectID == "" {
			ref.ProjectID = project
		}
		t, err := r.getOrDefineTable(ctx, ref, opts.Schema)
		if err != nil {
			return nil, err
		}
		res.Table = t
		dataset = DatasetRefInput(ref.Dataset())
	}

	switch dataset.kind {
	case inputResolved:
		res.Dataset = dataset.dataset
		if res.Dataset.Ref.ProjectID == "" {
			d := *res.Dataset
			d.Ref.ProjectID = project
			res.Dataset = &d
		}
	case inputRef:
		ref := dataset.ref
		if ref.DatasetID == "" {
			return nil, domain.ErrValidation(domain.ErrInvalidDataset, "Invalid dataset `%s.%s`", ref.ProjectID, ref.DatasetID)
		}
		if ref.ProjectID == "" {
			ref.ProjectID = project
		}
		d, err := r.getDataset(ctx, ref)
		if err != nil {
			return nil, err
		}
		res.Dataset = d
	case inputName:
		if dataset.name == "" {
			return nil, domain.ErrValidation(domain.ErrInvalidDataset, "Invalid dataset `%s`", dataset.name)
		}
		d, err := r.getDataset(ctx, domain.DatasetRef{ProjectID: project, DatasetID: dataset.name})
		if err != nil {
			return nil, err
		}
		res.Dataset = d
	case inputAbsent:
		if !table.IsZero() {
			return nil, domain.ErrValidation(domain.ErrMissingDataset, "Dataset required if table provided")
		}
		return res, nil
	}

	if table.kind == inputName {
		if table.name == "" {
			return nil, domain.ErrValidation(domain.ErrInvalidIdentifier, "Invalid table `%s`", table.name)
		}
		t, err := r.getOrDefineTable(ctx, res.Dataset.Ref.Table(table.name), opts.Schema)
		if err != nil {
			return nil, err
		}
		res.Table = t
	}
	return res, nil
}

func (r *Resolver) getDataset(ctx context.Context, ref domain.DatasetRef) (*domain.Dataset, error) {
	d, err := r.wh.GetDataset(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("get dataset %s.%s: %w", ref.ProjectID, ref.DatasetID, err)
	}
	return d, nil
}

// getOrDefineTable fetches ref. When the table does not exist it is defined
// locally from schema, without being created.
func (r *Resolver) getOrDefineTable(ctx context.Context, ref domain.TableRef, schema domain.Schema) (*domain.Table, error) {
	t, err := r.wh.GetTable(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get table %s: %w", ref.FullyQualified(), err)
	}
	if len(schema) == 0 {
		return nil, domain.ErrValidation(domain.ErrMissingSchema, "schema is required to create tables")
	}
	r.logger.Debug("table not found, defining from schema", "table", ref.FullyQualified(), "columns", len(schema))
	return &domain.Table{Ref: ref, Schema: schema}, nil
}
