package http

import (
	"net/http"

	"milkround/internal/core"
	applog "milkround/internal/log"
)

type applyRouteRequest struct {
	Names []string `json:"names"`
}

// handleRoute returns the active customers in visiting order.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	order := s.book.VisibleRoute()
	if order == nil {
		order = []core.Customer{}
	}
	NewJSONResponse().Body(order).Write(w)
}

// handleOptimizeRoute asks the route collaborator for a new order. When the
// collaborator fails the current order is kept and Fallback is set.
func (s *Server) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.routes.Optimize(r.Context())).Write(w)
}

// handleApplyRoute merges a manual name order into the route.
func (s *Server) handleApplyRoute(w http.ResponseWriter, r *http.Request) {
	var req applyRouteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	names := make([]string, 0, len(req.Names))
	for _, n := range req.Names {
		names = append(names, sanitizeInput(n))
	}

	order := s.routes.Apply(names)
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Route reordered manually",
		applog.FieldOperation, applog.OpUpdate,
		"customers", len(order))
	NewJSONResponse().Body(order).Write(w)
}
