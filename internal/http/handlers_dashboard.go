package http

import (
	"net/http"

	applog "milkround/internal/log"
)

// handleDashboard returns the summary of ?date= (default today).
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.book.Today())
	if err != nil {
		DomainError(r, err, applog.OpRead).Write(w)
		return
	}
	NewJSONResponse().Body(s.book.DailySummary(date)).Write(w)
}

// handleInsight returns advisory text for the figures of ?date=.
func (s *Server) handleInsight(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.book.Today())
	if err != nil {
		DomainError(r, err, applog.OpGenerate).Write(w)
		return
	}
	NewJSONResponse().Body(s.insights.Insight(r.Context(), date)).Write(w)
}
