// Package billing derives monthly bills and running balances from the
// delivery ledger and the customer's rate.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

// DueDay is the day of the month following the billed month on which a bill is due.
const DueDay = 5

// EntrySource provides the delivered entries of a customer within a month.
type EntrySource interface {
	EntriesForRange(customerID string, month core.Month) []core.DeliveryLog
}

type (
	Bill struct {
		CustomerID string          `json:"customer_id"`
		Month      core.Month      `json:"month"`
		Quantity   decimal.Decimal `json:"quantity"`
		Amount     decimal.Decimal `json:"amount"`
	}

	// Statement is a bill together with what the customer has to pay and by when.
	Statement struct {
		Bill     Bill            `json:"bill"`
		Balance  decimal.Decimal `json:"balance"`
		TotalDue decimal.Decimal `json:"total_due"`
		DueDate  core.Date       `json:"due_date"`
	}

	// Result is one row of a batch run; Err is set when that customer's bill failed.
	Result struct {
		Customer core.Customer
		Bill     Bill
		Err      error
	}
)

type Engine struct {
	entries  EntrySource
	location *time.Location
}

// NewEngine creates an engine reading from entries. Due dates are expressed
// in loc; nil means UTC.
func NewEngine(entries EntrySource, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{entries: entries, location: loc}
}

// ComputeMonthlyBill sums the delivered quantity of the month and prices it at
// the customer's current rate. It is recomputed on every call.
func (e *Engine) ComputeMonthlyBill(c core.Customer, month core.Month) (Bill, error) {
	if !c.PricePerLitre.IsPositive() {
		return Bill{}, &core.InvalidRateError{CustomerID: c.ID, Rate: c.PricePerLitre}
	}
	quantity := decimal.Zero
	for _, entry := range e.entries.EntriesForRange(c.ID, month) {
		if entry.IsDelivered {
			quantity = quantity.Add(entry.Quantity)
		}
	}
	return Bill{
		CustomerID: c.ID,
		Month:      month,
		Quantity:   quantity,
		Amount:     quantity.Mul(c.PricePerLitre),
	}, nil
}

// ComputeTotalDue adds any positive balance to the bill amount. Advances
// (negative balances) are not netted. The customer is not modified.
func (e *Engine) ComputeTotalDue(bill Bill, c core.Customer, dueDate core.Date) Statement {
	return Statement{
		Bill:     bill,
		Balance:  c.Balance,
		TotalDue: TotalDue(bill, c),
		DueDate:  dueDate,
	}
}

// Statement computes the bill of month and its total due in one step.
func (e *Engine) Statement(c core.Customer, month core.Month) (Statement, error) {
	bill, err := e.ComputeMonthlyBill(c, month)
	if err != nil {
		return Statement{}, err
	}
	return e.ComputeTotalDue(bill, c, e.DueDateFor(month)), nil
}

// DueDateFor returns the DueDay of the month after month, in the engine's location.
func (e *Engine) DueDateFor(month core.Month) core.Date {
	next := month.Next()
	return core.DateOf(time.Date(next.Year, next.Month, DueDay, 0, 0, 0, 0, e.location))
}

// ComputeMonthlyBills bills every customer. A failure for one customer is
// recorded on its row and does not stop the batch.
func (e *Engine) ComputeMonthlyBills(customers []core.Customer, month core.Month) []Result {
	out := make([]Result, 0, len(customers))
	for _, c := range customers {
		bill, err := e.ComputeMonthlyBill(c, month)
		out = append(out, Result{Customer: c, Bill: bill, Err: err})
	}
	return out
}

// TotalDue is bill.Amount + max(balance, 0).
func TotalDue(bill Bill, c core.Customer) decimal.Decimal {
	return bill.Amount.Add(decimal.Max(c.Balance, decimal.Zero))
}

// ApplyPayment reduces the balance by the payment amount. There is no floor:
// overpayment leaves a negative balance (an advance).
func ApplyPayment(c core.Customer, p core.Payment) (core.Customer, error) {
	if err := p.Validate(); err != nil {
		return core.Customer{}, err
	}
	if p.CustomerID != c.ID {
		return core.Customer{}, &core.ValidationError{Field: "customer_id", Reason: "payment belongs to another customer"}
	}
	c.Balance = c.Balance.Sub(p.Amount)
	return c, nil
}

// PostBill charges the bill amount onto the running balance.
func PostBill(c core.Customer, bill Bill) (core.Customer, error) {
	if bill.CustomerID != c.ID {
		return core.Customer{}, &core.ValidationError{Field: "customer_id", Reason: "bill belongs to another customer"}
	}
	c.Balance = c.Balance.Add(bill.Amount)
	return c, nil
}
