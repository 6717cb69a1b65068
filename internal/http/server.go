package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"milkround/internal/billing"
	"milkround/internal/core"
	applog "milkround/internal/log"
	"milkround/internal/middleware/ratelimit"
	"milkround/internal/middleware/security"
	"milkround/internal/middleware/trace"
	"milkround/internal/services"
	"milkround/internal/store"
)

// Book is the state the API reads and mutates.
type Book interface {
	Today() core.Date
	Version() uint64

	AddCustomer(c core.Customer) (core.Customer, error)
	EditCustomer(id string, patch core.CustomerPatch) (core.Customer, error)
	RemoveCustomer(id string) error
	Customer(id string) (core.Customer, error)
	Customers() []core.Customer
	SearchCustomers(query string) []core.Customer

	ToggleDelivery(customerID string, date core.Date, shift core.Shift) (core.DeliveryLog, error)
	AdjustDelivery(customerID string, date core.Date, shift core.Shift, delta decimal.Decimal) (core.DeliveryLog, error)
	Delivery(customerID string, date core.Date, shift core.Shift) (core.DeliveryLog, error)
	DeliveriesForDate(date core.Date) []core.DeliveryLog
	DailyTotal(date core.Date) decimal.Decimal

	MonthlyBills(month core.Month) []billing.Result
	Statement(customerID string, month core.Month) (core.Customer, billing.Statement, error)
	RecordPayment(p core.Payment) (core.Payment, core.Customer, error)
	Payments(customerID string) ([]core.Payment, error)
	PostMonthlyBill(customerID string, month core.Month) (core.PostedBill, core.Customer, error)
	PostedBills(customerID string) []core.PostedBill

	VisibleRoute() []core.Customer
	DailySummary(date core.Date) store.DailySummary
}

// Deps are the collaborators of the API server.
type Deps struct {
	Book     Book
	Notices  *services.NoticeService
	Routes   *services.RouteService
	Insights *services.InsightService
	Logger   *applog.Logger
	// RateLimit bounds mutating requests per client; zero values use the defaults.
	RateLimit ratelimit.Config
}

type Server struct {
	http.Server
	book     Book
	notices  *services.NoticeService
	routes   *services.RouteService
	insights *services.InsightService
	logger   *applog.Logger

	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		book:     deps.Book,
		notices:  deps.Notices,
		routes:   deps.Routes,
		insights: deps.Insights,
		logger:   logger.WithComponent(applog.ComponentHTTP),
		detector: security.NewDetector(),
		limiter:  ratelimit.NewLimiter(deps.RateLimit),
	}
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/customers", s.handleListCustomers)
	mux.HandleFunc("POST /api/customers", s.handleAddCustomer)
	mux.HandleFunc("GET /api/customers/{id}", s.handleGetCustomer)
	mux.HandleFunc("PATCH /api/customers/{id}", s.handleEditCustomer)
	mux.HandleFunc("DELETE /api/customers/{id}", s.handleRemoveCustomer)

	mux.HandleFunc("GET /api/deliveries", s.handleDeliveriesForDate)
	mux.HandleFunc("GET /api/customers/{id}/delivery", s.handleGetDelivery)
	mux.HandleFunc("POST /api/deliveries/toggle", s.handleToggleDelivery)
	mux.HandleFunc("POST /api/deliveries/adjust", s.handleAdjustDelivery)

	mux.HandleFunc("GET /api/bills", s.handleMonthlyBills)
	mux.HandleFunc("GET /api/customers/{id}/bill", s.handleStatement)
	mux.HandleFunc("POST /api/customers/{id}/bills/{month}/post", s.handlePostBill)
	mux.HandleFunc("GET /api/customers/{id}/bills/posted", s.handlePostedBills)
	mux.HandleFunc("GET /api/customers/{id}/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/customers/{id}/payments", s.handleRecordPayment)

	mux.HandleFunc("GET /api/route", s.handleRoute)
	mux.HandleFunc("POST /api/route/optimize", s.handleOptimizeRoute)
	mux.HandleFunc("PUT /api/route", s.handleApplyRoute)

	mux.HandleFunc("GET /api/customers/{id}/notice", s.handleDraftNotice)
	mux.HandleFunc("POST /api/customers/{id}/notice", s.handlePrepareNotice)
	mux.HandleFunc("POST /api/notices", s.handlePrepareMonth)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/insight", s.handleInsight)

	var handler http.Handler = mux
	handler = s.limitWrites(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = applog.Middleware(s.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Route and notice calls wait on the text collaborator.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// limitWrites applies the rate limiter to mutating requests only.
func (s *Server) limitWrites(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			limited.ServeHTTP(w, r)
		}
	})
}

// Shutdown stops the limiter janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

type healthResponse struct {
	Status     string            `json:"status"`
	Version    uint64            `json:"version"`
	Customers  int               `json:"customers"`
	Requests   trace.Metrics     `json:"requests"`
	RateLimit  ratelimit.Metrics `json:"rate_limit"`
	Suspicious int64             `json:"suspicious_requests"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(healthResponse{
		Status:     "ok",
		Version:    s.book.Version(),
		Customers:  len(s.book.Customers()),
		Requests:   s.tracer.GetMetrics(),
		RateLimit:  s.limiter.GetMetrics(),
		Suspicious: s.detector.SuspiciousCount(),
	}).Write(w)
}
