package store

import (
	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

// DemoCustomers returns a small sample round.
func DemoCustomers() []core.Customer {
	return []core.Customer{
		{
			Name:             "Sharma Ji",
			Address:          "102, Rose Apartments, MG Road",
			Mobile:           "9876543210",
			DefaultQuantity:  decimal.RequireFromString("1.5"),
			PricePerLitre:    decimal.NewFromInt(60),
			Balance:          decimal.NewFromInt(450),
			SubscriptionType: core.Daily,
		},
		{
			Name:             "Anjali Verma",
			Address:          "Plot 45, Green Valley",
			Mobile:           "9898989898",
			DefaultQuantity:  decimal.NewFromInt(1),
			PricePerLitre:    decimal.NewFromInt(62),
			SubscriptionType: core.Daily,
		},
		{
			Name:             "Rahul Techie",
			Address:          "Flat 5B, Silicon Heights",
			Mobile:           "9988776655",
			DefaultQuantity:  decimal.RequireFromString("0.5"),
			PricePerLitre:    decimal.NewFromInt(65),
			Balance:          decimal.NewFromInt(1200),
			SubscriptionType: core.AlternateDays,
		},
		{
			Name:             "Mrs. Iyer",
			Address:          "12, Temple Street",
			Mobile:           "8877665544",
			DefaultQuantity:  decimal.NewFromInt(2),
			PricePerLitre:    decimal.NewFromInt(60),
			Balance:          decimal.NewFromInt(-200),
			SubscriptionType: core.Daily,
		},
	}
}

// SeedDemo adds DemoCustomers to an empty store. It is a no-op otherwise.
func (s *Store) SeedDemo() error {
	if len(s.Customers()) > 0 {
		return nil
	}
	for _, c := range DemoCustomers() {
		if _, err := s.AddCustomer(c); err != nil {
			return err
		}
	}
	return nil
}
