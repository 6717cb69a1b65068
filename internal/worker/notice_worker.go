package worker

import (
	"context"
	"fmt"

	"milkround/internal/amqp"
	"milkround/internal/core"
	applog "milkround/internal/log"
	"milkround/internal/sheets"
)

// NoticeWorker exports published bill notices to a sheet.
type NoticeWorker struct {
	writer sheets.NoticeWriter
	logger *applog.Logger
}

func NewNoticeWorker(writer sheets.NoticeWriter, logger *applog.Logger) *NoticeWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &NoticeWorker{writer: writer, logger: logger.WithComponent(applog.ComponentWorker)}
}

// HandleNotice upserts one notice row. A notice with a malformed month is
// dropped, since requeueing it could never succeed; write failures are
// returned so the message is requeued.
func (w *NoticeWorker) HandleNotice(ctx context.Context, msg *amqp.BillNoticeMessage) error {
	if _, err := core.ParseMonth(msg.Month); err != nil {
		w.logger.WarnContext(ctx, "dropping notice with malformed month",
			applog.FieldCustomerID, msg.CustomerID,
			applog.FieldMonth, msg.Month,
			applog.FieldError, err)
		return nil
	}

	ref, err := w.writer.UpsertNotice(ctx, sheets.NoticeRow{
		CustomerID:   msg.CustomerID,
		Month:        msg.Month,
		CustomerName: msg.CustomerName,
		Quantity:     msg.Quantity,
		Amount:       msg.Amount,
		TotalDue:     msg.TotalDue,
		DueDate:      msg.DueDate,
		ShareLink:    msg.ShareLink,
		Fallback:     msg.Fallback,
		PreparedAt:   msg.Timestamp,
		Message:      msg.Message,
	})
	if err != nil {
		return fmt.Errorf("export notice %s/%s: %w", msg.CustomerID, msg.Month, err)
	}

	w.logger.InfoContext(ctx, "bill notice exported",
		applog.FieldCustomerID, msg.CustomerID,
		applog.FieldMonth, msg.Month,
		applog.FieldOperation, applog.OpExport,
		"row", ref)
	return nil
}
