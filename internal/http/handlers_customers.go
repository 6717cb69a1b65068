package http

import (
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
	applog "milkround/internal/log"
)

// customerRequest is the body of a new customer. New customers always start
// active with a zero balance.
type customerRequest struct {
	Name             string                `json:"name"`
	Address          string                `json:"address"`
	Mobile           string                `json:"mobile"`
	DefaultQuantity  decimal.Decimal       `json:"default_quantity"`
	PricePerLitre    decimal.Decimal       `json:"price_per_litre"`
	SubscriptionType core.SubscriptionType `json:"subscription_type"`
}

func (req customerRequest) toCustomer() core.Customer {
	return core.Customer{
		Name:             sanitizeInput(req.Name),
		Address:          sanitizeInput(req.Address),
		Mobile:           sanitizeInput(req.Mobile),
		DefaultQuantity:  req.DefaultQuantity,
		PricePerLitre:    req.PricePerLitre,
		Balance:          decimal.Zero,
		SubscriptionType: req.SubscriptionType,
	}
}

// handleListCustomers lists all customers, or those matching ?q= by name, mobile or address.
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	var customers []core.Customer
	if q := sanitizeInput(r.URL.Query().Get("q")); q != "" {
		customers = s.book.SearchCustomers(q)
	} else {
		customers = s.book.Customers()
	}
	if customers == nil {
		customers = []core.Customer{}
	}
	NewJSONResponse().Body(customers).Write(w)
}

func (s *Server) handleAddCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	c, err := s.book.AddCustomer(req.toCustomer())
	if err != nil {
		DomainError(r, err, applog.OpCreate).Write(w)
		return
	}

	applog.FromContext(r.Context()).Fields(r.Context(), slog.LevelInfo, "Customer added",
		applog.NewFields().WithCustomer(c.ID).WithOperation(applog.OpCreate).WithComponent(applog.ComponentStore))
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/api/customers/"+c.ID).Body(c).Write(w)
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.book.Customer(r.PathValue("id"))
	if err != nil {
		DomainError(r, err, applog.OpRead).Write(w)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

func (s *Server) handleEditCustomer(w http.ResponseWriter, r *http.Request) {
	var patch core.CustomerPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	for _, field := range []*string{patch.Name, patch.Address, patch.Mobile} {
		if field != nil {
			*field = sanitizeInput(*field)
		}
	}

	c, err := s.book.EditCustomer(r.PathValue("id"), patch)
	if err != nil {
		DomainError(r, err, applog.OpUpdate).Write(w)
		return
	}
	NewJSONResponse().Body(c).Write(w)
}

// handleRemoveCustomer deletes a customer once the caller confirms with ?confirm=true.
func (s *Server) handleRemoveCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !boolParam(r, "confirm") {
		ErrorResponse(http.StatusPreconditionRequired, "removing a customer must be confirmed with confirm=true").Write(w)
		return
	}
	if err := s.book.RemoveCustomer(id); err != nil {
		DomainError(r, err, applog.OpDelete).Write(w)
		return
	}

	applog.FromContext(r.Context()).Fields(r.Context(), slog.LevelInfo, "Customer removed",
		applog.NewFields().WithCustomer(id).WithOperation(applog.OpDelete).WithComponent(applog.ComponentStore))
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
