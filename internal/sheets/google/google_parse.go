package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ports "milkround/internal/sheets"
)

// Columns: customer id, month, name, quantity, amount, total due, due date,
// share link, fallback, prepared at, message.
const lastColumn = "K"

var Header = []any{"Customer ID", "Month", "Customer", "Quantity", "Amount", "Total Due", "Due Date", "Share Link", "Fallback", "Prepared At", "Message"}

func toRow(r ports.NoticeRow) []any {
	prepared := ""
	if !r.PreparedAt.IsZero() {
		prepared = r.PreparedAt.UTC().Format(time.RFC3339)
	}
	return []any{
		r.CustomerID,
		r.Month,
		r.CustomerName,
		r.Quantity.String(),
		r.Amount.String(),
		r.TotalDue.String(),
		r.DueDate,
		r.ShareLink,
		strconv.FormatBool(r.Fallback),
		prepared,
		r.Message,
	}
}

func parseRow(values []any) (ports.NoticeRow, error) {
	cells := toStrings(values)
	row := ports.NoticeRow{
		CustomerID:   safeGet(cells, 0),
		Month:        safeGet(cells, 1),
		CustomerName: safeGet(cells, 2),
		DueDate:      safeGet(cells, 6),
		ShareLink:    safeGet(cells, 7),
		Message:      safeGet(cells, 10),
	}
	var err error
	if row.Quantity, err = parseDecimal(safeGet(cells, 3)); err != nil {
		return ports.NoticeRow{}, fmt.Errorf("quantity: %w", err)
	}
	if row.Amount, err = parseDecimal(safeGet(cells, 4)); err != nil {
		return ports.NoticeRow{}, fmt.Errorf("amount: %w", err)
	}
	if row.TotalDue, err = parseDecimal(safeGet(cells, 5)); err != nil {
		return ports.NoticeRow{}, fmt.Errorf("total due: %w", err)
	}
	row.Fallback = strings.EqualFold(safeGet(cells, 8), "true")
	if s := safeGet(cells, 9); s != "" {
		if row.PreparedAt, err = time.Parse(time.RFC3339, s); err != nil {
			return ports.NoticeRow{}, fmt.Errorf("prepared at: %w", err)
		}
	}
	return row, nil
}

// parseDecimal treats an empty cell as zero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
