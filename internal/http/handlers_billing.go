package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"milkround/internal/billing"
	"milkround/internal/core"
	applog "milkround/internal/log"
)

type (
	billRow struct {
		Customer core.Customer `json:"customer"`
		Bill     billing.Bill  `json:"bill"`
		Error    string        `json:"error,omitempty"`
	}

	monthBills struct {
		Month       core.Month      `json:"month"`
		TotalAmount decimal.Decimal `json:"total_amount"`
		Rows        []billRow       `json:"rows"`
	}

	statementResponse struct {
		Customer core.Customer `json:"customer"`
		billing.Statement
	}

	postResponse struct {
		Posted   core.PostedBill `json:"posted"`
		Customer core.Customer   `json:"customer"`
	}

	paymentRequest struct {
		Date   *core.Date         `json:"date"`
		Amount decimal.Decimal    `json:"amount"`
		Method core.PaymentMethod `json:"method"`
	}

	paymentResponse struct {
		Payment  core.Payment  `json:"payment"`
		Customer core.Customer `json:"customer"`
	}
)

// handleMonthlyBills bills every customer for ?month= (default current month).
// A customer whose bill fails is reported in its row.
func (s *Server) handleMonthlyBills(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, "month", s.book.Today().BillingMonth())
	if err != nil {
		DomainError(r, err, applog.OpList).Write(w)
		return
	}

	results := s.book.MonthlyBills(month)
	resp := monthBills{Month: month, TotalAmount: decimal.Zero, Rows: make([]billRow, 0, len(results))}
	for _, res := range results {
		row := billRow{Customer: res.Customer, Bill: res.Bill}
		if res.Err != nil {
			row.Error = res.Err.Error()
		} else {
			resp.TotalAmount = resp.TotalAmount.Add(res.Bill.Amount)
		}
		resp.Rows = append(resp.Rows, row)
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	month, err := monthParam(r, "month", s.book.Today().BillingMonth())
	if err != nil {
		DomainError(r, err, applog.OpRead).Write(w)
		return
	}
	c, st, err := s.book.Statement(r.PathValue("id"), month)
	if err != nil {
		DomainError(r, err, applog.OpRead).Write(w)
		return
	}
	NewJSONResponse().Body(statementResponse{Customer: c, Statement: st}).Write(w)
}

func (s *Server) handlePostBill(w http.ResponseWriter, r *http.Request) {
	month, err := pathMonth(r, "month")
	if err != nil {
		DomainError(r, err, applog.OpPost).Write(w)
		return
	}
	posted, c, err := s.book.PostMonthlyBill(r.PathValue("id"), month)
	if err != nil {
		DomainError(r, err, applog.OpPost).Write(w)
		return
	}

	applog.FromContext(r.Context()).Fields(r.Context(), slog.LevelInfo, "Bill posted",
		applog.NewFields().
			WithCustomer(c.ID).
			WithMonth(month).
			WithAmount(posted.Amount).
			WithOperation(applog.OpPost).
			WithComponent(applog.ComponentBilling))
	NewJSONResponse().Status(http.StatusCreated).Body(postResponse{Posted: posted, Customer: c}).Write(w)
}

func (s *Server) handlePostedBills(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.book.Customer(id); err != nil {
		DomainError(r, err, applog.OpList).Write(w)
		return
	}
	posted := s.book.PostedBills(id)
	if posted == nil {
		posted = []core.PostedBill{}
	}
	NewJSONResponse().Body(posted).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.book.Payments(r.PathValue("id"))
	if err != nil {
		DomainError(r, err, applog.OpList).Write(w)
		return
	}
	if payments == nil {
		payments = []core.Payment{}
	}
	NewJSONResponse().Body(payments).Write(w)
}

// handleRecordPayment records a payment; date defaults to today and method to cash.
func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	p := core.Payment{
		CustomerID: r.PathValue("id"),
		Date:       s.book.Today(),
		Amount:     req.Amount,
		Method:     req.Method,
	}
	if req.Date != nil {
		p.Date = *req.Date
	}
	if p.Method == "" {
		p.Method = core.Cash
	}

	payment, c, err := s.book.RecordPayment(p)
	if err != nil {
		DomainError(r, err, applog.OpPay).Write(w)
		return
	}

	applog.FromContext(r.Context()).Fields(r.Context(), slog.LevelInfo, "Payment recorded",
		applog.NewFields().
			WithCustomer(c.ID).
			WithDate(payment.Date).
			WithAmount(payment.Amount).
			WithOperation(applog.OpPay).
			WithComponent(applog.ComponentBilling))
	NewJSONResponse().Status(http.StatusCreated).Body(paymentResponse{Payment: payment, Customer: c}).Write(w)
}
