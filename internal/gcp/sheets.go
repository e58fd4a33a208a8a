package gcp

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"iolib/internal/domain"
)

var _ domain.SheetValues = (*Sheets)(nil)

// Sheets implements domain.SheetValues.
type Sheets struct {
	svc *sheets.Service
}

// NewSheets creates a Sheets client. A read-only client cannot update values.
func NewSheets(ctx context.Context, creds Credentials, readOnly bool) (*Sheets, error) {
	scope := sheets.SpreadsheetsScope
	if readOnly {
		scope = sheets.SpreadsheetsReadonlyScope
	}
	svc, err := sheets.NewService(ctx, creds.ClientOptions(scope)...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Sheets{svc: svc}, nil
}

// GetValues reads rangeName with unformatted values and formatted date-times.
func (s *Sheets) GetValues(ctx context.Context, spreadsheetID, rangeName string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rangeName).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, translate(err)
	}
	return resp.Values, nil
}

// UpdateValues writes values into rangeName as if typed by a user.
func (s *Sheets) UpdateValues(ctx context.Context, spreadsheetID, rangeName string, values [][]any) (string, error) {
	resp, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rangeName, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return "", translate(err)
	}
	return resp.SpreadsheetId, nil
}
