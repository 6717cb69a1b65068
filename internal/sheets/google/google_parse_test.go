package google

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	ports "milkround/internal/sheets"
)

func TestRowRoundTrip(t *testing.T) {
	in := ports.NoticeRow{
		CustomerID:   "c1",
		Month:        "2024-03",
		CustomerName: "Sharma Ji",
		Quantity:     decimal.RequireFromString("7.5"),
		Amount:       decimal.RequireFromString("450"),
		TotalDue:     decimal.RequireFromString("900"),
		DueDate:      "2024-04-05",
		ShareLink:    "https://wa.me/919876543210?text=hi",
		Fallback:     true,
		PreparedAt:   time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC),
		Message:      "hi",
	}
	out, err := parseRow(toRow(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.CustomerID != in.CustomerID || !out.TotalDue.Equal(in.TotalDue) || !out.Quantity.Equal(in.Quantity) ||
		!out.Fallback || !out.PreparedAt.Equal(in.PreparedAt) || out.Message != "hi" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestParseRowShortAndBad(t *testing.T) {
	row, err := parseRow([]any{"c1", "2024-03"})
	if err != nil {
		t.Fatalf("short row: %v", err)
	}
	if !row.Amount.IsZero() || row.Fallback {
		t.Fatalf("short row = %+v", row)
	}
	if _, err := parseRow([]any{"c1", "2024-03", "x", "lots"}); err == nil {
		t.Fatal("expected quantity error")
	}
}

func TestFindRowSkipsHeader(t *testing.T) {
	values := [][]any{
		{"Customer ID", "Month"},
		{"c1", "2024-02"},
		{"c1", "2024-03"},
	}
	if got := findRow(values, "c1", "2024-03"); got != 3 {
		t.Fatalf("findRow = %d, want 3", got)
	}
	if got := findRow(values, "Customer ID", "Month"); got != 0 {
		t.Fatalf("header matched: %d", got)
	}
}
