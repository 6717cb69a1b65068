// Package registry owns the set of customer records.
//
// The registry is not safe for concurrent use; the store serialises access to it.
package registry

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

type Registry struct {
	customers []core.Customer
	index     map[string]int
	newID     func() string
}

type Option func(*Registry)

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

func New(opts ...Option) *Registry {
	r := &Registry{
		index: make(map[string]int),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add assigns a fresh id, marks the customer active and appends it.
func (r *Registry) Add(c core.Customer) (core.Customer, error) {
	c.ID = ""
	c.IsActive = true
	if c.SubscriptionType == "" {
		c.SubscriptionType = core.Daily
	}
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}

	id := r.newID()
	if r.Has(id) {
		return core.Customer{}, &core.ValidationError{Field: "id", Reason: "generated id already in use"}
	}
	c.ID = id
	r.index[id] = len(r.customers)
	r.customers = append(r.customers, c)
	return c, nil
}

// Edit merges patch onto the record matched by id. The stored record is
// only replaced when the merged result is valid.
func (r *Registry) Edit(id string, patch core.CustomerPatch) (core.Customer, error) {
	i, ok := r.index[id]
	if !ok {
		return core.Customer{}, &core.NotFoundError{Kind: "customer", ID: id}
	}
	updated := patch.Apply(r.customers[i])
	if err := updated.Validate(); err != nil {
		return core.Customer{}, err
	}
	r.customers[i] = updated
	return updated, nil
}

// Remove deletes the record. Delivery logs and payments that reference it are kept.
func (r *Registry) Remove(id string) error {
	i, ok := r.index[id]
	if !ok {
		return &core.NotFoundError{Kind: "customer", ID: id}
	}
	r.customers = append(r.customers[:i], r.customers[i+1:]...)
	r.reindex()
	return nil
}

func (r *Registry) Get(id string) (core.Customer, error) {
	i, ok := r.index[id]
	if !ok {
		return core.Customer{}, &core.NotFoundError{Kind: "customer", ID: id}
	}
	return r.customers[i], nil
}

func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// SetBalance overwrites a customer's balance. Only settlement paths call it.
func (r *Registry) SetBalance(id string, balance decimal.Decimal) error {
	i, ok := r.index[id]
	if !ok {
		return &core.NotFoundError{Kind: "customer", ID: id}
	}
	r.customers[i].Balance = balance
	return nil
}

// List returns all customers in registry order.
func (r *Registry) List() []core.Customer {
	return append([]core.Customer(nil), r.customers...)
}

// Active returns active customers in registry order.
func (r *Registry) Active() []core.Customer {
	out := make([]core.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// Search does a case-insensitive substring match over name, mobile and address.
// An empty query matches everything.
func (r *Registry) Search(query string) []core.Customer {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]core.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Mobile), q) ||
			strings.Contains(strings.ToLower(c.Address), q) {
			out = append(out, c)
		}
	}
	return out
}

// Restore replaces the registry content with previously persisted records.
func (r *Registry) Restore(customers []core.Customer) error {
	index := make(map[string]int, len(customers))
	for i, c := range customers {
		if c.ID == "" {
			return &core.ValidationError{Field: "id", Reason: "must not be empty"}
		}
		if _, dup := index[c.ID]; dup {
			return &core.ValidationError{Field: "id", Reason: "duplicate id " + c.ID}
		}
		index[c.ID] = i
	}
	r.customers = append([]core.Customer(nil), customers...)
	r.index = index
	return nil
}

func (r *Registry) Len() int { return len(r.customers) }

func (r *Registry) reindex() {
	r.index = make(map[string]int, len(r.customers))
	for i, c := range r.customers {
		r.index[c.ID] = i
	}
}
