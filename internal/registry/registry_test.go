package registry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("c%d", n)
	})
}

func customer(name, mobile, address string) core.Customer {
	return core.Customer{
		Name:            name,
		Address:         address,
		Mobile:          mobile,
		DefaultQuantity: decimal.NewFromInt(1),
		PricePerLitre:   decimal.NewFromInt(60),
	}
}

func TestAddAssignsIDAndDefaults(t *testing.T) {
	r := New(sequentialIDs())
	c, err := r.Add(core.Customer{
		ID:              "ignored",
		Name:            "Sharma Ji",
		Address:         "MG Road",
		Mobile:          "9876543210",
		DefaultQuantity: decimal.RequireFromString("1.5"),
		PricePerLitre:   decimal.NewFromInt(60),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.ID != "c1" || !c.IsActive || c.SubscriptionType != core.Daily {
		t.Fatalf("unexpected customer %+v", c)
	}

	got, err := r.Get("c1")
	if err != nil || got != c {
		t.Fatalf("get: %+v %v", got, err)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	r := New(sequentialIDs())
	bad := customer("", "1", "x")
	if _, err := r.Add(bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	bad = customer("a", "1", "x")
	bad.PricePerLitre = decimal.Zero
	if _, err := r.Add(bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if r.Len() != 0 {
		t.Fatalf("invalid customers were stored")
	}
}

func TestEdit(t *testing.T) {
	r := New(sequentialIDs())
	c, _ := r.Add(customer("A", "111", "Road 1"))

	same, err := r.Edit(c.ID, core.CustomerPatch{})
	if err != nil || same != c {
		t.Fatalf("no-op edit changed record: %+v %v", same, err)
	}

	price := decimal.NewFromInt(65)
	updated, err := r.Edit(c.ID, core.CustomerPatch{PricePerLitre: &price})
	if err != nil || !updated.PricePerLitre.Equal(price) || updated.ID != c.ID {
		t.Fatalf("unexpected edit result %+v %v", updated, err)
	}

	empty := ""
	if _, err := r.Edit(c.ID, core.CustomerPatch{Name: &empty}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	stored, _ := r.Get(c.ID)
	if stored.Name != "A" {
		t.Fatalf("failed edit partially applied: %+v", stored)
	}

	if _, err := r.Edit("missing", core.CustomerPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	r := New(sequentialIDs())
	a, _ := r.Add(customer("A", "1", "x"))
	b, _ := r.Add(customer("B", "2", "x"))
	c, _ := r.Add(customer("C", "3", "x"))

	if err := r.Remove(b.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	list := r.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != c.ID {
		t.Fatalf("unexpected list %+v", list)
	}
	if _, err := r.Get(c.ID); err != nil {
		t.Fatalf("index not rebuilt: %v", err)
	}
	if err := r.Remove(b.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	r := New(sequentialIDs())
	r.Add(customer("Sharma Ji", "9876543210", "Rose Apartments, MG Road"))
	r.Add(customer("Anjali Verma", "9898989898", "Green Valley"))
	r.Add(customer("Rahul Techie", "9988776655", "Silicon Heights"))

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"c1", "c2", "c3"}},
		{"sharma", []string{"c1"}},
		{"VALLEY", []string{"c2"}},
		{"98", []string{"c1", "c2", "c3"}},
		{"9898", []string{"c2"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := r.Search(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Search(%q) = %d results, want %d", tt.query, len(got), len(tt.want))
			}
			for i, c := range got {
				if c.ID != tt.want[i] {
					t.Fatalf("Search(%q)[%d] = %s, want %s", tt.query, i, c.ID, tt.want[i])
				}
			}
		})
	}
}

func TestActiveAndBalance(t *testing.T) {
	r := New(sequentialIDs())
	a, _ := r.Add(customer("A", "1", "x"))
	b, _ := r.Add(customer("B", "2", "x"))
	off := false
	r.Edit(a.ID, core.CustomerPatch{IsActive: &off})

	active := r.Active()
	if len(active) != 1 || active[0].ID != b.ID {
		t.Fatalf("unexpected active set %+v", active)
	}

	if err := r.SetBalance(b.ID, decimal.NewFromInt(-200)); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	got, _ := r.Get(b.ID)
	if !got.Balance.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("balance not stored: %s", got.Balance)
	}
}

func TestRestoreRejectsDuplicates(t *testing.T) {
	r := New()
	c := customer("A", "1", "x")
	c.ID = "same"
	if err := r.Restore([]core.Customer{c, c}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := r.Restore([]core.Customer{c}); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !r.Has("same") {
		t.Fatalf("restored customer missing")
	}
}
