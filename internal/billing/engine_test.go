package billing

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
	"milkround/internal/ledger"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var march = core.Month{Year: 2024, Month: time.March}

func customerC() core.Customer {
	return core.Customer{
		ID:               "c",
		Name:             "C",
		Address:          "x",
		Mobile:           "1",
		DefaultQuantity:  dec("1.5"),
		PricePerLitre:    dec("60"),
		IsActive:         true,
		SubscriptionType: core.Daily,
	}
}

func TestComputeMonthlyBillScenario(t *testing.T) {
	l := ledger.New()
	c := customerC()
	for day := 1; day <= 5; day++ {
		if _, err := l.ToggleDelivered(c.ID, core.NewDate(2024, 3, day), core.Morning, c.DefaultQuantity); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	// one explicit skip
	l.ToggleDelivered(c.ID, core.NewDate(2024, 3, 6), core.Morning, c.DefaultQuantity)
	l.ToggleDelivered(c.ID, core.NewDate(2024, 3, 6), core.Morning, c.DefaultQuantity)
	// other month and other customer
	l.ToggleDelivered(c.ID, core.NewDate(2024, 4, 1), core.Morning, c.DefaultQuantity)
	l.ToggleDelivered("other", core.NewDate(2024, 3, 1), core.Morning, dec("3"))

	bill, err := NewEngine(l, nil).ComputeMonthlyBill(c, march)
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	if !bill.Quantity.Equal(dec("7.5")) || !bill.Amount.Equal(dec("450")) {
		t.Fatalf("bill = {quantity:%s amount:%s}, want {7.5 450}", bill.Quantity, bill.Amount)
	}
}

type fixedEntries []core.DeliveryLog

func (f fixedEntries) EntriesForRange(string, core.Month) []core.DeliveryLog { return f }

func TestComputeMonthlyBillIgnoresUndelivered(t *testing.T) {
	entries := fixedEntries{
		{Quantity: dec("2"), IsDelivered: true},
		{Quantity: dec("5"), IsDelivered: false},
	}
	bill, err := NewEngine(entries, nil).ComputeMonthlyBill(customerC(), march)
	if err != nil {
		t.Fatalf("bill: %v", err)
	}
	if !bill.Amount.Equal(dec("120")) {
		t.Fatalf("amount = %s, want 120", bill.Amount)
	}
}

func TestInvalidRate(t *testing.T) {
	e := NewEngine(fixedEntries{}, nil)
	for _, rate := range []string{"0", "-5"} {
		c := customerC()
		c.PricePerLitre = dec(rate)
		_, err := e.ComputeMonthlyBill(c, march)
		var rateErr *core.InvalidRateError
		if !errors.As(err, &rateErr) || !errors.Is(err, core.ErrInvalidRate) {
			t.Fatalf("rate %s: expected InvalidRateError, got %v", rate, err)
		}
	}
}

func TestBatchDoesNotAbort(t *testing.T) {
	good := customerC()
	bad := customerC()
	bad.ID = "bad"
	bad.PricePerLitre = decimal.Zero
	entries := fixedEntries{{Quantity: dec("1"), IsDelivered: true}}

	results := NewEngine(entries, nil).ComputeMonthlyBills([]core.Customer{bad, good}, march)
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if !errors.Is(results[0].Err, core.ErrInvalidRate) {
		t.Fatalf("expected invalid rate for first row, got %v", results[0].Err)
	}
	if results[1].Err != nil || !results[1].Bill.Amount.Equal(dec("60")) {
		t.Fatalf("second row = %+v", results[1])
	}
}

func TestComputeTotalDue(t *testing.T) {
	e := NewEngine(fixedEntries{}, nil)
	bill := Bill{CustomerID: "c", Month: march, Amount: dec("300")}
	due := e.DueDateFor(march)

	tests := []struct {
		balance string
		want    string
	}{
		{"-200", "300"},
		{"0", "300"},
		{"450", "750"},
	}
	for _, tt := range tests {
		t.Run(tt.balance, func(t *testing.T) {
			c := customerC()
			c.Balance = dec(tt.balance)
			st := e.ComputeTotalDue(bill, c, due)
			if !st.TotalDue.Equal(dec(tt.want)) {
				t.Fatalf("total due = %s, want %s", st.TotalDue, tt.want)
			}
			if !c.Balance.Equal(dec(tt.balance)) {
				t.Fatalf("balance mutated")
			}
		})
	}
}

func TestDueDateFor(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		month core.Month
		loc   *time.Location
		want  string
	}{
		{march, nil, "2024-04-05"},
		{core.Month{Year: 2024, Month: time.December}, nil, "2025-01-05"},
		{core.Month{Year: 2024, Month: time.January}, kolkata, "2024-02-05"},
	}
	for _, tt := range tests {
		got := NewEngine(fixedEntries{}, tt.loc).DueDateFor(tt.month)
		if got.String() != tt.want {
			t.Fatalf("DueDateFor(%s) = %s, want %s", tt.month, got, tt.want)
		}
	}
}

func TestStatement(t *testing.T) {
	c := customerC()
	c.Balance = dec("100")
	st, err := NewEngine(fixedEntries{{Quantity: dec("2"), IsDelivered: true}}, nil).Statement(c, march)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !st.TotalDue.Equal(dec("220")) || st.DueDate.String() != "2024-04-05" {
		t.Fatalf("unexpected statement %+v", st)
	}
}

func TestApplyPayment(t *testing.T) {
	c := customerC()
	c.Balance = dec("450")
	p := core.Payment{CustomerID: "c", Date: core.NewDate(2024, 3, 2), Amount: dec("1000"), Method: core.UPI}

	updated, err := ApplyPayment(c, p)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !updated.Balance.Equal(dec("-550")) {
		t.Fatalf("balance = %s, want -550", updated.Balance)
	}
	if !c.Balance.Equal(dec("450")) {
		t.Fatalf("input customer mutated")
	}

	p.CustomerID = "someone-else"
	if _, err := ApplyPayment(c, p); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	p.CustomerID = "c"
	p.Amount = decimal.Zero
	if _, err := ApplyPayment(c, p); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPostBill(t *testing.T) {
	c := customerC()
	c.Balance = dec("-200")
	updated, err := PostBill(c, Bill{CustomerID: "c", Month: march, Amount: dec("450")})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if !updated.Balance.Equal(dec("250")) {
		t.Fatalf("balance = %s, want 250", updated.Balance)
	}
	if _, err := PostBill(c, Bill{CustomerID: "x"}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
