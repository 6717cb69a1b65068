package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BillNoticeMessage is a prepared bill notice for one customer and month.
// It is self-contained so consumers never need to read the book.
type BillNoticeMessage struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Mobile       string          `json:"mobile"`
	Month        string          `json:"month"`
	Quantity     decimal.Decimal `json:"quantity"`
	Amount       decimal.Decimal `json:"amount"`
	TotalDue     decimal.Decimal `json:"total_due"`
	DueDate      string          `json:"due_date"`
	Message      string          `json:"message"`
	ShareLink    string          `json:"share_link"`
	Fallback     bool            `json:"fallback"`
	Timestamp    time.Time       `json:"timestamp"`
}

func (m *BillNoticeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillNoticeMessageFromJSON decodes a message and checks its identifying fields.
func BillNoticeMessageFromJSON(data []byte) (*BillNoticeMessage, error) {
	var msg BillNoticeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.CustomerID == "" || msg.Month == "" {
		return nil, fmt.Errorf("bill notice without customer or month")
	}
	return &msg, nil
}
