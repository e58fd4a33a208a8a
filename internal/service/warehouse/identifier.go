// Package warehouse resolves warehouse table identities and implements the
// read path and the reconciling write path on top of domain.Warehouse.
package warehouse

import (
	"slices"
	"strings"

	"iolib/internal/domain"
)

// TableID is a table identifier split into its parts. ProjectID and DatasetID
// are empty when the identifier did not carry them.
type TableID struct {
	ProjectID string
	DatasetID string
	TableID   string
}

// ParseTableID splits "table", "dataset.table" or "project.dataset.table".
//
// Splitting is a plain split on "." so a table name containing a dot cannot be
// expressed. Every part of a dotted identifier must be non-empty.
func ParseTableID(s string) (TableID, error) {
	if !strings.Contains(s, ".") {
		return TableID{TableID: s}, nil
	}
	parts := strings.Split(s, ".")
	if slices.Contains(parts, "") {
		return TableID{}, domain.ErrValidation(domain.ErrInvalidIdentifier, "Invalid table_id `%s`", s)
	}
	switch len(parts) {
	case 2:
		return TableID{DatasetID: parts[0], TableID: parts[1]}, nil
	case 3:
		return TableID{ProjectID: parts[0], DatasetID: parts[1], TableID: parts[2]}, nil
	}
	return TableID{}, domain.ErrValidation(domain.ErrInvalidIdentifier, "Invalid table_id `%s`", s)
}
