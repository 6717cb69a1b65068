package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
	applog "milkround/internal/log"
)

type deliveryRequest struct {
	CustomerID string           `json:"customer_id"`
	Date       *core.Date       `json:"date"`
	Shift      string           `json:"shift"`
	Delta      *decimal.Decimal `json:"delta,omitempty"`
}

// key resolves the ledger key; a missing date means today.
func (req deliveryRequest) key(today core.Date) (string, core.Date, core.Shift) {
	date := today
	if req.Date != nil {
		date = *req.Date
	}
	return sanitizeInput(req.CustomerID), date, parseShift(req.Shift)
}

type dayDeliveries struct {
	Date    core.Date          `json:"date"`
	Total   decimal.Decimal    `json:"total_litres"`
	Entries []core.DeliveryLog `json:"entries"`
}

// handleDeliveriesForDate lists the ledger entries of ?date= (default today).
func (s *Server) handleDeliveriesForDate(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.book.Today())
	if err != nil {
		DomainError(r, err, applog.OpList).Write(w)
		return
	}
	entries := s.book.DeliveriesForDate(date)
	if entries == nil {
		entries = []core.DeliveryLog{}
	}
	NewJSONResponse().Body(dayDeliveries{
		Date:    date,
		Total:   s.book.DailyTotal(date),
		Entries: entries,
	}).Write(w)
}

func (s *Server) handleGetDelivery(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.book.Today())
	if err != nil {
		DomainError(r, err, applog.OpRead).Write(w)
		return
	}
	entry, err := s.book.Delivery(r.PathValue("id"), date, parseShift(r.URL.Query().Get("shift")))
	if err != nil {
		DomainError(r, err, applog.OpRead).Write(w)
		return
	}
	NewJSONResponse().Body(entry).Write(w)
}

func (s *Server) handleToggleDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Delta != nil {
		BadRequestError("delta is not accepted by toggle").Write(w)
		return
	}

	id, date, shift := req.key(s.book.Today())
	entry, err := s.book.ToggleDelivery(id, date, shift)
	if err != nil {
		DomainError(r, err, applog.OpToggle).Write(w)
		return
	}
	NewJSONResponse().Body(entry).Write(w)
}

func (s *Server) handleAdjustDelivery(w http.ResponseWriter, r *http.Request) {
	var req deliveryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if req.Delta == nil {
		UnprocessableEntityError("delta is required").Write(w)
		return
	}

	id, date, shift := req.key(s.book.Today())
	entry, err := s.book.AdjustDelivery(id, date, shift, *req.Delta)
	if err != nil {
		DomainError(r, err, applog.OpAdjust).Write(w)
		return
	}
	NewJSONResponse().Body(entry).Write(w)
}
