package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "milkround/internal/sheets"
)

const DefaultSheetName = "Notices"

// Client writes bill notices to one sheet of a spreadsheet. Row 1 is a header.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var (
	_ ports.NoticeWriter = (*Client)(nil)
	_ ports.NoticeLister = (*Client)(nil)
)

// New builds a client on an existing service.
func New(svc *gsheet.Service, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheetName}, nil
}

// NewFromEnv creates a client authenticated with a service account.
// Credentials come from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS, in that order.
func NewFromEnv(ctx context.Context, spreadsheetID, sheetName string, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := serviceAccountJSON()
	if err != nil {
		return nil, err
	}
	all := append([]goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)
	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, sheetName)
}

func serviceAccountJSON() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// UpsertNotice overwrites the row keyed by (customer, month) or appends one.
func (c *Client) UpsertNotice(ctx context.Context, row ports.NoticeRow) (string, error) {
	if row.CustomerID == "" || row.Month == "" {
		return "", errors.New("notice row needs customer and month")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	keys, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, fmt.Sprintf("%s!A:B", c.sheet)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read keys of %s: %w", c.sheet, err)
	}
	vr := &gsheet.ValueRange{Values: [][]any{toRow(row)}}

	if n := findRow(keys.Values, row.CustomerID, row.Month); n > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", c.sheet, n, lastColumn, n)
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("update %s: %w", rng, err)
		}
		return rng, nil
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A:%s", c.sheet, lastColumn), vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", c.sheet, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return c.sheet, nil
}

// ListNotices reads every data row and keeps those of month.
func (c *Client) ListNotices(ctx context.Context, month string) ([]ports.NoticeRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:%s", c.sheet, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	var out []ports.NoticeRow
	for i, values := range resp.Values {
		row, err := parseRow(values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if row.Month == month {
			out = append(out, row)
		}
	}
	return out, nil
}

// findRow returns the 1-based sheet row holding key, skipping the header, or 0.
func findRow(values [][]any, customerID, month string) int {
	for i, v := range values {
		if i == 0 {
			continue
		}
		cells := toStrings(v)
		if safeGet(cells, 0) == customerID && safeGet(cells, 1) == month {
			return i + 1
		}
	}
	return 0
}
