// Package assistant holds the narrow ports for the text and ordering
// collaborators and the guard that turns their failures into fixed fallbacks.
package assistant

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

// ErrUnavailable is returned by collaborators that are not configured.
var ErrUnavailable = errors.New("collaborator not configured")

type (
	// MessageRequest carries the numbers of one bill notice.
	MessageRequest struct {
		Customer core.Customer
		Month    core.Month
		TotalDue decimal.Decimal
		DueDate  core.Date
	}

	// InsightRequest carries the figures of one day.
	InsightRequest struct {
		Date          core.Date
		TotalQuantity decimal.Decimal
		TotalRevenue  decimal.Decimal
		CustomerCount int
	}
)

type MessageGenerator interface {
	GenerateMessage(ctx context.Context, req MessageRequest) (string, error)
}

// RouteSuggester returns customer display names in a suggested visiting order.
// The result is advisory and may name unknown customers or omit known ones.
type RouteSuggester interface {
	SuggestOrder(ctx context.Context, customers []core.Customer) ([]string, error)
}

type InsightSummarizer interface {
	Summarize(ctx context.Context, req InsightRequest) (string, error)
}

// Unavailable implements every port and always fails.
type Unavailable struct{}

func (Unavailable) GenerateMessage(context.Context, MessageRequest) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) SuggestOrder(context.Context, []core.Customer) ([]string, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Summarize(context.Context, InsightRequest) (string, error) {
	return "", ErrUnavailable
}
