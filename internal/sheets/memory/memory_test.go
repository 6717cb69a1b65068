package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"milkround/internal/sheets"
)

func TestUpsertReplacesSameCustomerMonth(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref1, err := s.UpsertNotice(ctx, sheets.NoticeRow{CustomerID: "c1", Month: "2024-03", TotalDue: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	s.UpsertNotice(ctx, sheets.NoticeRow{CustomerID: "c2", Month: "2024-03"})
	s.UpsertNotice(ctx, sheets.NoticeRow{CustomerID: "c1", Month: "2024-04"})
	ref2, _ := s.UpsertNotice(ctx, sheets.NoticeRow{CustomerID: "c1", Month: "2024-03", TotalDue: decimal.NewFromInt(150)})

	if ref1 != ref2 {
		t.Fatalf("refs differ: %s vs %s", ref1, ref2)
	}
	rows, _ := s.ListNotices(ctx, "2024-03")
	if len(rows) != 2 || !rows[0].TotalDue.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestUpsertRejectsIncompleteRow(t *testing.T) {
	if _, err := New().UpsertNotice(context.Background(), sheets.NoticeRow{CustomerID: "c1"}); err == nil {
		t.Fatal("expected error")
	}
}
