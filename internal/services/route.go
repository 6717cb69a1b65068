package services

import (
	"context"

	"milkround/internal/assistant"
	"milkround/internal/core"
	applog "milkround/internal/log"
)

// RouteBook is the part of the book the route service needs.
type RouteBook interface {
	RouteSnapshot() []core.Customer
	ApplySuggestedOrder(names []string) []core.Customer
}

type RouteResult struct {
	Order     []core.Customer `json:"order"`
	Suggested []string        `json:"suggested"`
	Fallback  bool            `json:"fallback"`
}

type RouteService struct {
	book   RouteBook
	guard  *assistant.Guard
	logger *applog.Logger
}

func NewRouteService(book RouteBook, guard *assistant.Guard, logger *applog.Logger) *RouteService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &RouteService{book: book, guard: guard, logger: logger.WithComponent(applog.ComponentRoute)}
}

// Optimize asks for a visiting order of the current route and merges the
// answer into the sequence. Customers added or removed while the request was
// in flight are reconciled by the merge.
func (s *RouteService) Optimize(ctx context.Context) RouteResult {
	snapshot := s.book.RouteSnapshot()
	if len(snapshot) == 0 {
		return RouteResult{Order: []core.Customer{}, Suggested: []string{}}
	}

	out := s.guard.SuggestOrder(ctx, snapshot)
	order := s.book.ApplySuggestedOrder(out.Value)

	s.logger.InfoContext(ctx, "route reordered",
		"customers", len(order),
		"suggested", len(out.Value),
		"fallback", out.Fallback)
	return RouteResult{Order: order, Suggested: out.Value, Fallback: out.Fallback}
}

// Apply merges a caller-provided name order, e.g. a manual reorder.
func (s *RouteService) Apply(names []string) []core.Customer {
	return s.book.ApplySuggestedOrder(names)
}
