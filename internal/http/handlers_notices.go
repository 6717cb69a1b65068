package http

import (
	"net/http"

	applog "milkround/internal/log"
)

// handleDraftNotice previews the notice of a customer without publishing it.
func (s *Server) handleDraftNotice(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, "month", s.book.Today().BillingMonth())
	if err != nil {
		DomainError(r, err, applog.OpGenerate).Write(w)
		return
	}
	n, err := s.notices.Draft(r.Context(), r.PathValue("id"), month)
	if err != nil {
		DomainError(r, err, applog.OpGenerate).Write(w)
		return
	}
	NewJSONResponse().Body(n).Write(w)
}

// handlePrepareNotice prepares and publishes the notice of a customer.
func (s *Server) handlePrepareNotice(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, "month", s.book.Today().BillingMonth())
	if err != nil {
		DomainError(r, err, applog.OpPublish).Write(w)
		return
	}
	n, err := s.notices.PrepareNotice(r.Context(), r.PathValue("id"), month)
	if err != nil {
		DomainError(r, err, applog.OpPublish).Write(w)
		return
	}
	NewJSONResponse().Body(n).Write(w)
}

// handlePrepareMonth prepares notices for every customer with something to pay.
func (s *Server) handlePrepareMonth(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, "month", s.book.Today().BillingMonth())
	if err != nil {
		DomainError(r, err, applog.OpPublish).Write(w)
		return
	}
	out, err := s.notices.PrepareMonth(r.Context(), month)
	if err != nil {
		DomainError(r, err, applog.OpPublish).Write(w)
		return
	}
	NewJSONResponse().Body(out).Write(w)
}
