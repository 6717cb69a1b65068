package services

import (
	"context"
	"fmt"

	"milkround/internal/assistant"
	"milkround/internal/cache"
	"milkround/internal/core"
	applog "milkround/internal/log"
	"milkround/internal/store"
)

type SummarySource interface {
	DailySummary(date core.Date) store.DailySummary
}

type Insight struct {
	Date     core.Date          `json:"date"`
	Summary  store.DailySummary `json:"summary"`
	Text     string             `json:"text"`
	Fallback bool               `json:"fallback"`
	Cached   bool               `json:"cached"`
}

// InsightService produces advisory text for a day's figures. Generated text
// is cached per (litres, revenue, active customers); placeholders are not.
type InsightService struct {
	book   SummarySource
	guard  *assistant.Guard
	cache  cache.Cache[string]
	logger *applog.Logger
}

func NewInsightService(book SummarySource, guard *assistant.Guard, c cache.Cache[string], logger *applog.Logger) *InsightService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &InsightService{book: book, guard: guard, cache: c, logger: logger.WithComponent(applog.ComponentInsight)}
}

func (s *InsightService) Insight(ctx context.Context, date core.Date) Insight {
	sum := s.book.DailySummary(date)
	req := assistant.InsightRequest{
		Date:          date,
		TotalQuantity: sum.DeliveredLitres,
		TotalRevenue:  sum.EstimatedRevenue,
		CustomerCount: sum.ActiveCustomers,
	}
	key := insightKey(req)

	if s.cache != nil {
		if text, ok := s.cache.Get(key); ok {
			s.logger.DebugContext(ctx, "insight served from cache", applog.FieldDate, date.String())
			return Insight{Date: date, Summary: sum, Text: text, Cached: true}
		}
	}

	out := s.guard.Summarize(ctx, req)
	if !out.Fallback && s.cache != nil {
		s.cache.Set(key, out.Value)
	}
	return Insight{Date: date, Summary: sum, Text: out.Value, Fallback: out.Fallback}
}

func insightKey(req assistant.InsightRequest) string {
	return fmt.Sprintf("%s|%s|%d", req.TotalQuantity.String(), req.TotalRevenue.String(), req.CustomerCount)
}
