// Package store is the single owner of the book's in-memory state.
//
// Every mutation goes through a typed Store method so that id uniqueness, the
// ledger key invariant and balance settlement are enforced in one place.
// Methods are safe for concurrent use; they are serialised by one mutex.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"milkround/internal/billing"
	"milkround/internal/core"
	"milkround/internal/ledger"
	"milkround/internal/registry"
	"milkround/internal/route"
)

type postedKey struct {
	customerID string
	month      core.Month
}

type Store struct {
	mu sync.Mutex

	customers  *registry.Registry
	deliveries *ledger.Ledger
	engine     *billing.Engine
	sequence   *route.Sequencer
	payments   []core.Payment
	posted     map[postedKey]core.PostedBill
	postedSeq  []postedKey

	location *time.Location
	now      func() time.Time
	newID    func() string
	version  uint64
}

type Option func(*Store)

// WithLocation sets the calendar used for "today" and due dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the id generator for customers, entries and payments.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(opts ...Option) *Store {
	s := &Store{
		posted:   make(map[postedKey]core.PostedBill),
		location: time.UTC,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.customers = registry.New(registry.WithIDGenerator(s.newID))
	s.deliveries = ledger.New(ledger.WithIDGenerator(s.newID))
	s.engine = billing.NewEngine(s.deliveries, s.location)
	s.sequence = route.New(nil)
	return s
}

// Today returns the current calendar day in the store's location.
func (s *Store) Today() core.Date {
	return core.DateOf(s.now().In(s.location))
}

// Version increases on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Customers

func (s *Store) AddCustomer(c core.Customer) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.customers.Add(c)
	if err != nil {
		return core.Customer{}, err
	}
	s.sequence.Append(added.ID)
	s.version++
	return added, nil
}

func (s *Store) EditCustomer(id string, patch core.CustomerPatch) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.customers.Edit(id, patch)
	if err != nil {
		return core.Customer{}, err
	}
	s.version++
	return updated, nil
}

// RemoveCustomer deletes the customer record. Its delivery entries and
// payments stay in the book and are filtered out of read views.
func (s *Store) RemoveCustomer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.customers.Remove(id); err != nil {
		return err
	}
	s.sequence.Remove(id)
	s.version++
	return nil
}

func (s *Store) Customer(id string) (core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.Get(id)
}

func (s *Store) Customers() []core.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.List()
}

func (s *Store) SearchCustomers(query string) []core.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers.Search(query)
}

// Deliveries

// ToggleDelivery marks or unmarks a delivery using the customer's default quantity.
func (s *Store) ToggleDelivery(customerID string, date core.Date, shift core.Shift) (core.DeliveryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customers.Get(customerID)
	if err != nil {
		return core.DeliveryLog{}, err
	}
	entry, err := s.deliveries.ToggleDelivered(c.ID, date, shift, c.DefaultQuantity)
	if err != nil {
		return core.DeliveryLog{}, err
	}
	s.version++
	return entry, nil
}

// AdjustDelivery changes the quantity of a delivery by delta.
func (s *Store) AdjustDelivery(customerID string, date core.Date, shift core.Shift, delta decimal.Decimal) (core.DeliveryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customers.Get(customerID)
	if err != nil {
		return core.DeliveryLog{}, err
	}
	entry, err := s.deliveries.AdjustQuantity(c.ID, date, shift, delta, c.DefaultQuantity)
	if err != nil {
		return core.DeliveryLog{}, err
	}
	s.version++
	return entry, nil
}

// Delivery returns the ledger entry for a key.
func (s *Store) Delivery(customerID string, date core.Date, shift core.Shift) (core.DeliveryLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.deliveries.GetEntry(customerID, date, shift)
	if !ok {
		return core.DeliveryLog{}, &core.NotFoundError{Kind: "delivery", ID: ledger.KeyOf(customerID, date, shift).String()}
	}
	return entry, nil
}

// DeliveriesForDate returns the entries of date whose customer still exists.
func (s *Store) DeliveriesForDate(date core.Date) []core.DeliveryLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knownEntries(date)
}

// DailyTotal sums delivered litres on date across existing customers.
func (s *Store) DailyTotal(date core.Date) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.SumDelivered(s.knownEntries(date))
}

func (s *Store) knownEntries(date core.Date) []core.DeliveryLog {
	all := s.deliveries.EntriesForDate(date)
	out := make([]core.DeliveryLog, 0, len(all))
	for _, e := range all {
		if s.customers.Has(e.CustomerID) {
			out = append(out, e)
		}
	}
	return out
}

// Billing

func (s *Store) MonthlyBill(customerID string, month core.Month) (billing.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customers.Get(customerID)
	if err != nil {
		return billing.Bill{}, err
	}
	return s.engine.ComputeMonthlyBill(c, month)
}

// MonthlyBills bills every customer, inactive ones included.
func (s *Store) MonthlyBills(month core.Month) []billing.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ComputeMonthlyBills(s.customers.List(), month)
}

// Statement returns the bill of month with the customer's total due and due date.
func (s *Store) Statement(customerID string, month core.Month) (core.Customer, billing.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customers.Get(customerID)
	if err != nil {
		return core.Customer{}, billing.Statement{}, err
	}
	st, err := s.engine.Statement(c, month)
	if err != nil {
		return core.Customer{}, billing.Statement{}, err
	}
	return c, st, nil
}

func (s *Store) DueDateFor(month core.Month) core.Date {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DueDateFor(month)
}

// RecordPayment stores the payment and reduces the customer's balance.
func (s *Store) RecordPayment(p core.Payment) (core.Payment, core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.customers.Get(p.CustomerID)
	if err != nil {
		return core.Payment{}, core.Customer{}, err
	}
	updated, err := billing.ApplyPayment(c, p)
	if err != nil {
		return core.Payment{}, core.Customer{}, err
	}
	p.ID = s.newID()
	if err := s.customers.SetBalance(c.ID, updated.Balance); err != nil {
		return core.Payment{}, core.Customer{}, err
	}
	s.payments = append(s.payments, p)
	s.version++
	return p, updated, nil
}

// Payments returns the payments of a customer in the order they were recorded.
func (s *Store) Payments(customerID string) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.customers.Has(customerID) {
		return nil, &core.NotFoundError{Kind: "customer", ID: customerID}
	}
	var out []core.Payment
	for _, p := range s.payments {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

// PostMonthlyBill adds the month's charge to the customer's balance. A month
// can be posted once per customer; after that it is closed.
func (s *Store) PostMonthlyBill(customerID string, month core.Month) (core.PostedBill, core.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := postedKey{customerID: customerID, month: month}
	if _, done := s.posted[key]; done {
		return core.PostedBill{}, core.Customer{}, fmt.Errorf("%w: customer %s, month %s", core.ErrAlreadyPosted, customerID, month)
	}
	c, err := s.customers.Get(customerID)
	if err != nil {
		return core.PostedBill{}, core.Customer{}, err
	}
	bill, err := s.engine.ComputeMonthlyBill(c, month)
	if err != nil {
		return core.PostedBill{}, core.Customer{}, err
	}
	updated, err := billing.PostBill(c, bill)
	if err != nil {
		return core.PostedBill{}, core.Customer{}, err
	}
	if err := s.customers.SetBalance(c.ID, updated.Balance); err != nil {
		return core.PostedBill{}, core.Customer{}, err
	}
	posted := core.PostedBill{
		CustomerID: c.ID,
		Month:      month,
		Quantity:   bill.Quantity,
		Amount:     bill.Amount,
		PostedAt:   s.now(),
	}
	s.posted[key] = posted
	s.postedSeq = append(s.postedSeq, key)
	s.version++
	return posted, updated, nil
}

// PostedBills lists the closed months of a customer.
func (s *Store) PostedBills(customerID string) []core.PostedBill {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.PostedBill
	for _, k := range s.postedSeq {
		if k.customerID == customerID {
			out = append(out, s.posted[k])
		}
	}
	return out
}

// Route

// RouteSnapshot returns the active customers in visible route order. It is
// the input of a route suggestion request.
func (s *Store) RouteSnapshot() []core.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleCustomers()
}

// ApplySuggestedOrder merges a suggested name order into the route and returns
// the new visible order.
func (s *Store) ApplySuggestedOrder(names []string) []core.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence.ApplySuggestedOrder(names, s.customers.List())
	s.version++
	return s.visibleCustomers()
}

// VisibleRoute returns active customers in route order.
func (s *Store) VisibleRoute() []core.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleCustomers()
}

func (s *Store) visibleCustomers() []core.Customer {
	ids := s.sequence.VisibleOrder(s.customers.List())
	out := make([]core.Customer, 0, len(ids))
	for _, id := range ids {
		if c, err := s.customers.Get(id); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Persistence

// Snapshot copies the full state.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := core.Snapshot{
		Customers:  s.customers.List(),
		Deliveries: s.deliveries.Entries(),
		Payments:   append([]core.Payment(nil), s.payments...),
		RouteOrder: s.sequence.Order(),
	}
	for _, k := range s.postedSeq {
		snap.PostedBills = append(snap.PostedBills, s.posted[k])
	}
	return snap
}

// Restore replaces the state with snap. On error the store is left unchanged.
func (s *Store) Restore(snap core.Snapshot) error {
	customers := registry.New(registry.WithIDGenerator(s.newID))
	if err := customers.Restore(snap.Customers); err != nil {
		return fmt.Errorf("restore customers: %w", err)
	}
	deliveries := ledger.New(ledger.WithIDGenerator(s.newID))
	if err := deliveries.Restore(snap.Deliveries); err != nil {
		return fmt.Errorf("restore deliveries: %w", err)
	}
	posted := make(map[postedKey]core.PostedBill, len(snap.PostedBills))
	postedSeq := make([]postedKey, 0, len(snap.PostedBills))
	for _, pb := range snap.PostedBills {
		k := postedKey{customerID: pb.CustomerID, month: pb.Month}
		if _, dup := posted[k]; dup {
			return fmt.Errorf("restore posted bills: %w", &core.ValidationError{Field: "posted_bill", Reason: "duplicate month " + pb.Month.String()})
		}
		posted[k] = pb
		postedSeq = append(postedSeq, k)
	}
	sequence := route.New(snap.RouteOrder)
	for _, c := range snap.Customers {
		sequence.Append(c.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers = customers
	s.deliveries = deliveries
	s.engine = billing.NewEngine(deliveries, s.location)
	s.sequence = sequence
	s.payments = append([]core.Payment(nil), snap.Payments...)
	s.posted = posted
	s.postedSeq = postedSeq
	s.version++
	return nil
}
