// Package sheets stores birthdays in a Google Sheets spreadsheet: one row per
// person, name in column A and M/D/YYYY date in column B, below a header row.
package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
	"github.com/tartampluch/go-encounter/internal/googleauth"
)

// Registry implements engine.BirthdayRegistry on the first sheet of a spreadsheet.
type Registry struct {
	svc     *sheetsv4.Service
	sheetID string
}

// New connects to the spreadsheet. Callers pass the authenticated HTTP client
// (or a test endpoint) through opts.
func New(ctx context.Context, sheetID string, opts ...option.ClientOption) (*Registry, error) {
	svc, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrGoogleService, err)
	}
	return &Registry{svc: svc, sheetID: sheetID}, nil
}

// ListBirthdays reads the fixed data range. Blank rows are dropped; a row
// with only one filled cell is reported as malformed.
func (r *Registry) ListBirthdays(ctx context.Context) ([]engine.BirthdayRecord, error) {
	slog.DebugContext(ctx, config.MsgGoogleRequest,
		config.LogKeyComponent, config.CompSheets,
		config.LogKeyValue, config.SheetReadRange,
	)
	resp, err := r.svc.Spreadsheets.Values.Get(r.sheetID, config.SheetReadRange).Context(ctx).Do()
	if err != nil {
		return nil, googleauth.Wrap(config.ErrListBirthdays, err)
	}

	records := make([]engine.BirthdayRecord, 0, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if len(row) < config.SheetColumnsPerRow {
			// Data starts on the second sheet row.
			return nil, fmt.Errorf("%s %d: %v", config.ErrMalformedRow, i+2, row)
		}
		records = append(records, engine.BirthdayRecord{
			Name: fmt.Sprint(row[config.SheetColumnName]),
			Date: fmt.Sprint(row[config.SheetColumnDate]),
		})
	}
	return records, nil
}

// AddBirthday appends a row after the last filled one.
func (r *Registry) AddBirthday(ctx context.Context, rec engine.BirthdayRecord) error {
	vr := &sheetsv4.ValueRange{
		Values: [][]interface{}{{rec.Name, rec.Date}},
	}
	_, err := r.svc.Spreadsheets.Values.Append(r.sheetID, config.SheetAppendRange, vr).
		ValueInputOption(config.SheetValueInputOption).
		InsertDataOption(config.SheetInsertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return googleauth.Wrap(config.ErrAddBirthday, err)
	}
	return nil
}
