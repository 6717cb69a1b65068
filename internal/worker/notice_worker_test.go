package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"milkround/internal/amqp"
	"milkround/internal/sheets"
	"milkround/internal/sheets/memory"
)

func TestHandleNoticeExportsRow(t *testing.T) {
	store := memory.New()
	w := NewNoticeWorker(store, nil)
	msg := &amqp.BillNoticeMessage{
		CustomerID: "c1",
		Month:      "2024-03",
		TotalDue:   decimal.NewFromInt(450),
		Message:    "Hello",
	}

	if err := w.HandleNotice(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// redelivery must not duplicate the row
	if err := w.HandleNotice(context.Background(), msg); err != nil {
		t.Fatalf("handle again: %v", err)
	}
	rows, _ := store.ListNotices(context.Background(), "2024-03")
	if len(rows) != 1 || !rows[0].TotalDue.Equal(decimal.NewFromInt(450)) || rows[0].Message != "Hello" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestHandleNoticeDropsMalformedMonth(t *testing.T) {
	store := memory.New()
	w := NewNoticeWorker(store, nil)
	if err := w.HandleNotice(context.Background(), &amqp.BillNoticeMessage{CustomerID: "c1", Month: "March"}); err != nil {
		t.Fatalf("malformed month should be dropped, got %v", err)
	}
	rows, _ := store.ListNotices(context.Background(), "March")
	if len(rows) != 0 {
		t.Fatalf("rows = %+v", rows)
	}
}

type failingWriter struct{}

func (failingWriter) UpsertNotice(context.Context, sheets.NoticeRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHandleNoticeReturnsWriteErrors(t *testing.T) {
	w := NewNoticeWorker(failingWriter{}, nil)
	if err := w.HandleNotice(context.Background(), &amqp.BillNoticeMessage{CustomerID: "c1", Month: "2024-03"}); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
}
