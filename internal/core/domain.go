package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily         SubscriptionType = "Daily"
	AlternateDays SubscriptionType = "Alternate Days"
	Custom        SubscriptionType = "Custom"
)

const (
	Morning Shift = "Morning"
	Evening Shift = "Evening"
)

const (
	Cash     PaymentMethod = "Cash"
	UPI      PaymentMethod = "UPI"
	Transfer PaymentMethod = "Transfer"
)

type (
	SubscriptionType string
	Shift            string
	PaymentMethod    string

	Customer struct {
		ID               string           `json:"id"`
		Name             string           `json:"name"`
		Address          string           `json:"address"`
		Mobile           string           `json:"mobile"`
		DefaultQuantity  decimal.Decimal  `json:"default_quantity"` // litres
		PricePerLitre    decimal.Decimal  `json:"price_per_litre"`
		Balance          decimal.Decimal  `json:"balance"` // positive = due, negative = advance
		IsActive         bool             `json:"is_active"`
		SubscriptionType SubscriptionType `json:"subscription_type"`
	}

	// CustomerPatch lists the editable fields of a customer. Nil fields are left untouched.
	// Balance is deliberately absent: it only moves through payments and bill postings.
	CustomerPatch struct {
		Name             *string           `json:"name,omitempty"`
		Address          *string           `json:"address,omitempty"`
		Mobile           *string           `json:"mobile,omitempty"`
		DefaultQuantity  *decimal.Decimal  `json:"default_quantity,omitempty"`
		PricePerLitre    *decimal.Decimal  `json:"price_per_litre,omitempty"`
		IsActive         *bool             `json:"is_active,omitempty"`
		SubscriptionType *SubscriptionType `json:"subscription_type,omitempty"`
	}

	DeliveryLog struct {
		ID          string          `json:"id"`
		CustomerID  string          `json:"customer_id"`
		Date        Date            `json:"date"`
		Quantity    decimal.Decimal `json:"quantity"`
		IsDelivered bool            `json:"is_delivered"`
		Shift       Shift           `json:"shift"`
	}

	Payment struct {
		ID         string          `json:"id"`
		CustomerID string          `json:"customer_id"`
		Date       Date            `json:"date"`
		Amount     decimal.Decimal `json:"amount"`
		Method     PaymentMethod   `json:"method"`
	}

	// PostedBill records a month whose charge was added to the customer's balance.
	PostedBill struct {
		CustomerID string          `json:"customer_id"`
		Month      Month           `json:"month"`
		Quantity   decimal.Decimal `json:"quantity"`
		Amount     decimal.Decimal `json:"amount"`
		PostedAt   time.Time       `json:"posted_at"`
	}
)

func (s SubscriptionType) Valid() bool {
	switch s {
	case Daily, AlternateDays, Custom:
		return true
	default:
		return false
	}
}

func (s Shift) Valid() bool {
	return s == Morning || s == Evening
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case Cash, UPI, Transfer:
		return true
	default:
		return false
	}
}

// Apply returns a copy of c with the non-nil patch fields merged in.
func (p CustomerPatch) Apply(c Customer) Customer {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Mobile != nil {
		c.Mobile = *p.Mobile
	}
	if p.DefaultQuantity != nil {
		c.DefaultQuantity = *p.DefaultQuantity
	}
	if p.PricePerLitre != nil {
		c.PricePerLitre = *p.PricePerLitre
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	if p.SubscriptionType != nil {
		c.SubscriptionType = *p.SubscriptionType
	}
	return c
}

// Validate checks the registry invariants of a customer record.
func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Address) == "" {
		return &ValidationError{Field: "address", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Mobile) == "" {
		return &ValidationError{Field: "mobile", Reason: "must not be empty"}
	}
	if !c.DefaultQuantity.IsPositive() {
		return &ValidationError{Field: "default_quantity", Reason: "must be positive"}
	}
	if !c.PricePerLitre.IsPositive() {
		return &ValidationError{Field: "price_per_litre", Reason: "must be positive"}
	}
	if !c.SubscriptionType.Valid() {
		return &ValidationError{Field: "subscription_type", Reason: "unknown type " + string(c.SubscriptionType)}
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.CustomerID) == "" {
		return &ValidationError{Field: "customer_id", Reason: "must not be empty"}
	}
	if err := p.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Reason: err.Error()}
	}
	if !p.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if !p.Method.Valid() {
		return &ValidationError{Field: "method", Reason: "unknown method " + string(p.Method)}
	}
	return nil
}

// Snapshot is the complete persisted state of the book.
type Snapshot struct {
	Customers   []Customer
	Deliveries  []DeliveryLog
	Payments    []Payment
	PostedBills []PostedBill
	RouteOrder  []string
}
