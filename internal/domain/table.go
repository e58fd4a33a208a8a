package domain

import "fmt"

// DatasetRef identifies a dataset without asserting it exists.
type DatasetRef struct {
	ProjectID string
	DatasetID string
}

// Table returns a reference to the named table inside this dataset.
func (r DatasetRef) Table(tableID string) TableRef {
	return TableRef{ProjectID: r.ProjectID, DatasetID: r.DatasetID, TableID: tableID}
}

// Dataset is a dataset fetched from the warehouse.
type Dataset struct {
	Ref      DatasetRef
	Location string
}

// TableRef identifies a table without asserting it exists.
type TableRef struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// Dataset returns the reference of the dataset holding this table.
func (r TableRef) Dataset() DatasetRef {
	return DatasetRef{ProjectID: r.ProjectID, DatasetID: r.DatasetID}
}

// FullyQualified returns project.dataset.table.
func (r TableRef) FullyQualified() string {
	return fmt.Sprintf("%s.%s.%s", r.ProjectID, r.DatasetID, r.TableID)
}

// SchemaField describes one table column.
type SchemaField struct {
	Name        string        `json:"name" yaml:"name"`
	Type        string        `json:"type" yaml:"type"`
	Mode        string        `json:"mode,omitempty" yaml:"mode,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []SchemaField `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Schema is an ordered list of columns.
type Schema []SchemaField

// Names returns the top-level column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Table is a resolved table handle. Created is true only when the table was
// fetched from (or created on) the server; a table defined locally from a
// reference and a schema has Created == false until CreateTable runs.
type Table struct {
	Ref     TableRef
	Schema  Schema
	Created bool
}

// InsertFailure is one row-level failure reported by a streaming insert.
type InsertFailure struct {
	RowIndex int
	Errors   []ErrorDetail
}

func (f InsertFailure) String() string {
	return fmt.Sprintf("row %d: %v", f.RowIndex, f.Errors)
}
