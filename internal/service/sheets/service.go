// Package sheets reads spreadsheets and writes frames into new spreadsheets.
package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"iolib/internal/domain"
	"iolib/internal/service/drive"
)

// MaxColumns is the widest frame Write accepts: ranges are addressed with
// single-letter columns A through Z.
const MaxColumns = 26

const firstSheet = "Sheet1"

// Service reads and writes spreadsheets. Existence checks and file
// lifecycle go through the Drive files capability.
type Service struct {
	files  *drive.Service
	values domain.SheetValues
	logger *slog.Logger
}

// NewService creates a new Service.
func NewService(files domain.DriveFiles, values domain.SheetValues, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		files:  drive.NewService(files, logger),
		values: values,
		logger: logger,
	}
}

// Read returns the values of a sheet. With header set, the first row names
// the columns; otherwise columns are named by position. Short rows are padded
// with nil.
func (s *Service) Read(ctx context.Context, spreadsheetID, sheetName string, header bool) (*domain.Frame, error) {
	values, err := s.values.GetValues(ctx, spreadsheetID, sheetName)
	if err != nil {
		return nil, fmt.Errorf("get values of %s!%s: %w", spreadsheetID, sheetName, err)
	}

	var columns []string
	if header && len(values) > 0 {
		for _, v := range values[0] {
			columns = append(columns, fmt.Sprint(v))
		}
		values = values[1:]
	}
	width := len(columns)
	for _, row := range values {
		width = max(width, len(row))
	}
	for i := len(columns); i < width; i++ {
		columns = append(columns, strconv.Itoa(i))
	}

	f := domain.NewFrame(columns...)
	for _, row := range values {
		f.Append(row...)
	}
	return f.NormalizeRows(), nil
}

// WriteOptions controls where and how a spreadsheet is written.
type WriteOptions struct {
	// IfExists is fail (default) or replace.
	IfExists domain.IfExists
	FolderID string
	DriveID  string
}

// Write creates a spreadsheet called name holding f, header row first, and
// returns its id. An existing spreadsheet with the same name fails the write
// unless opts.IfExists is replace, in which case it is deleted first. The new
// spreadsheet is always created fresh.
func (s *Service) Write(ctx context.Context, f *domain.Frame, name string, opts WriteOptions) (string, error) {
	policy := opts.IfExists
	if policy == "" {
		policy = domain.IfExistsFail
	}
	if policy != domain.IfExistsFail && policy != domain.IfExistsReplace {
		return "", domain.ErrValidation(domain.ErrInvalidPolicy, "Invalid if_exists (%q)", string(policy))
	}
	if f == nil {
		f = &domain.Frame{}
	}
	if f.Width() > MaxColumns {
		return "", domain.ErrValidation(domain.ErrTooManyColumns, "Too many columns to write to spreadsheet (%d)", f.Width())
	}

	existing, err := s.files.Find(ctx, domain.FileQuery{
		Name:     name,
		FolderID: opts.FolderID,
		MIMEType: domain.SpreadsheetMIMEType,
		DriveID:  opts.DriveID,
	})
	if err != nil {
		return "", err
	}
	if len(existing) > 1 {
		return "", domain.ErrConflict(domain.ErrAmbiguousName, "Multiple spreadsheets found with name %q", name)
	}
	if len(existing) == 1 {
		if policy == domain.IfExistsFail {
			return "", domain.ErrConflict(domain.ErrAlreadyExists,
				"Spreadsheet already exists. Use `if_exists=\"replace\"` to replace the spreadsheet")
		}
		if err := s.files.Delete(ctx, existing[0].ID); err != nil {
			return "", err
		}
		s.logger.Debug("spreadsheet replaced", "name", name, "id", existing[0].ID)
	}

	file := domain.DriveFile{Name: name, MIMEType: domain.SpreadsheetMIMEType}
	if opts.FolderID != "" {
		file.Parents = []string{opts.FolderID}
	}
	id, err := s.files.Create(ctx, file)
	if err != nil {
		return "", err
	}

	written, err := s.values.UpdateValues(ctx, id, Range(f.Width(), f.Len()+1), Values(f))
	if err != nil {
		return "", fmt.Errorf("populate spreadsheet %s: %w", id, err)
	}
	s.logger.Info("spreadsheet written", "name", name, "id", written, "rows", f.Len(), "columns", f.Width())
	return written, nil
}

// Range returns the A1 range of the first sheet covering cols columns and
// rows rows, e.g. Sheet1!A1:C4.
func Range(cols, rows int) string {
	last := byte('A')
	if cols > 0 {
		last = byte('A' + cols - 1)
	}
	return fmt.Sprintf("%s!A1:%c%d", firstSheet, last, rows)
}

// Values returns the header row followed by every row of f, with each cell
// passed through FormatCellValue.
func Values(f *domain.Frame) [][]any {
	out := make([][]any, 0, f.Len()+1)
	header := make([]any, f.Width())
	for i, c := range f.Columns {
		header[i] = c
	}
	out = append(out, header)
	for _, row := range f.Rows {
		cells := make([]any, f.Width())
		for i := range cells {
			if i < len(row) {
				cells[i] = FormatCellValue(row[i])
			}
		}
		out = append(out, cells)
	}
	return out
}
