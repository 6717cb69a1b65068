package sheets

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// NoticeRow is one exported bill notice. (CustomerID, Month) identifies a row.
type NoticeRow struct {
	CustomerID   string
	Month        string
	CustomerName string
	Quantity     decimal.Decimal
	Amount       decimal.Decimal
	TotalDue     decimal.Decimal
	DueDate      string
	ShareLink    string
	Fallback     bool
	PreparedAt   time.Time
	Message      string
}

// Ports for outbound adapters.
type (
	// NoticeWriter stores a notice, replacing an earlier row for the same
	// customer and month so redelivered messages do not duplicate rows.
	NoticeWriter interface {
		UpsertNotice(ctx context.Context, row NoticeRow) (rowRef string, err error)
	}

	NoticeLister interface {
		ListNotices(ctx context.Context, month string) ([]NoticeRow, error)
	}
)
