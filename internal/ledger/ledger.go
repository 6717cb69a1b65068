// Package ledger keeps the per-day, per-customer delivery entries.
//
// Each (customer, date, shift) key maps to at most one entry. An entry is
// created the first time a delivery is toggled or its quantity adjusted and is
// mutated in place afterwards; entries are never deleted.
//
// Per key the states are absent, delivered and skipped:
//
//	absent    -> delivered  via ToggleDelivered or AdjustQuantity
//	delivered <-> skipped   via ToggleDelivered
//
// AdjustQuantity changes the quantity in whatever state holds and never
// re-marks a skipped entry as delivered.
package ledger

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

// Key identifies a ledger entry.
type Key struct {
	CustomerID string
	Date       string // ISO date
	Shift      core.Shift
}

func KeyOf(customerID string, date core.Date, shift core.Shift) Key {
	return Key{CustomerID: customerID, Date: date.String(), Shift: shift}
}

type Ledger struct {
	entries map[Key]*core.DeliveryLog
	order   []Key
	newID   func() string
}

type Option func(*Ledger)

func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		entries: make(map[Key]*core.DeliveryLog),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetEntry returns the entry for the key, if any.
func (l *Ledger) GetEntry(customerID string, date core.Date, shift core.Shift) (core.DeliveryLog, bool) {
	e, ok := l.entries[KeyOf(customerID, date, shift)]
	if !ok {
		return core.DeliveryLog{}, false
	}
	return *e, true
}

// ToggleDelivered flips isDelivered on an existing entry, or creates a
// delivered entry with defaultQuantity.
func (l *Ledger) ToggleDelivered(customerID string, date core.Date, shift core.Shift, defaultQuantity decimal.Decimal) (core.DeliveryLog, error) {
	if err := validateKey(customerID, date, shift); err != nil {
		return core.DeliveryLog{}, err
	}
	key := KeyOf(customerID, date, shift)
	if e, ok := l.entries[key]; ok {
		e.IsDelivered = !e.IsDelivered
		return *e, nil
	}
	if defaultQuantity.IsNegative() {
		return core.DeliveryLog{}, &core.ValidationError{Field: "default_quantity", Reason: "must not be negative"}
	}
	return l.insert(key, date, defaultQuantity), nil
}

// AdjustQuantity adds delta to the entry quantity, clamped at zero. When no
// entry exists one is created from defaultQuantity+delta and marked delivered.
func (l *Ledger) AdjustQuantity(customerID string, date core.Date, shift core.Shift, delta, defaultQuantity decimal.Decimal) (core.DeliveryLog, error) {
	if err := validateKey(customerID, date, shift); err != nil {
		return core.DeliveryLog{}, err
	}
	key := KeyOf(customerID, date, shift)
	if e, ok := l.entries[key]; ok {
		e.Quantity = clampZero(e.Quantity.Add(delta))
		return *e, nil
	}
	return l.insert(key, date, clampZero(defaultQuantity.Add(delta))), nil
}

// EntriesForDate returns every entry on date, any shift, in creation order.
func (l *Ledger) EntriesForDate(date core.Date) []core.DeliveryLog {
	day := date.String()
	var out []core.DeliveryLog
	for _, k := range l.order {
		if k.Date == day {
			out = append(out, *l.entries[k])
		}
	}
	return out
}

// EntriesForRange returns the delivered entries of a customer within month.
func (l *Ledger) EntriesForRange(customerID string, month core.Month) []core.DeliveryLog {
	var out []core.DeliveryLog
	for _, k := range l.order {
		if k.CustomerID != customerID {
			continue
		}
		e := l.entries[k]
		if e.IsDelivered && month.Contains(e.Date) {
			out = append(out, *e)
		}
	}
	return out
}

// DailyTotal sums delivered quantity on date across all customers.
func (l *Ledger) DailyTotal(date core.Date) decimal.Decimal {
	return SumDelivered(l.EntriesForDate(date))
}

// Entries returns every entry in creation order.
func (l *Ledger) Entries() []core.DeliveryLog {
	out := make([]core.DeliveryLog, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, *l.entries[k])
	}
	return out
}

// Restore replaces the ledger content, rejecting duplicate keys.
func (l *Ledger) Restore(entries []core.DeliveryLog) error {
	restored := make(map[Key]*core.DeliveryLog, len(entries))
	order := make([]Key, 0, len(entries))
	for i := range entries {
		e := entries[i]
		if err := validateKey(e.CustomerID, e.Date, e.Shift); err != nil {
			return err
		}
		key := KeyOf(e.CustomerID, e.Date, e.Shift)
		if _, dup := restored[key]; dup {
			return &core.ValidationError{Field: "delivery", Reason: "duplicate entry for " + key.String()}
		}
		restored[key] = &e
		order = append(order, key)
	}
	l.entries = restored
	l.order = order
	return nil
}

func (l *Ledger) Len() int { return len(l.order) }

func (k Key) String() string {
	return strings.Join([]string{k.CustomerID, k.Date, string(k.Shift)}, "/")
}

// SumDelivered sums the quantity of delivered entries.
func SumDelivered(entries []core.DeliveryLog) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e.IsDelivered {
			total = total.Add(e.Quantity)
		}
	}
	return total
}

func (l *Ledger) insert(key Key, date core.Date, quantity decimal.Decimal) core.DeliveryLog {
	e := &core.DeliveryLog{
		ID:          l.newID(),
		CustomerID:  key.CustomerID,
		Date:        date,
		Quantity:    quantity,
		IsDelivered: true,
		Shift:       key.Shift,
	}
	l.entries[key] = e
	l.order = append(l.order, key)
	return *e
}

func validateKey(customerID string, date core.Date, shift core.Shift) error {
	if strings.TrimSpace(customerID) == "" {
		return &core.ValidationError{Field: "customer_id", Reason: "must not be empty"}
	}
	if err := date.Validate(); err != nil {
		return &core.ValidationError{Field: "date", Reason: err.Error()}
	}
	if !shift.Valid() {
		return &core.ValidationError{Field: "shift", Reason: "unknown shift " + string(shift)}
	}
	return nil
}

func clampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
