package store

import (
	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

// TrendDays is the length of the delivered-litres trend in a daily summary.
const TrendDays = 7

type (
	DayTotal struct {
		Date   core.Date       `json:"date"`
		Litres decimal.Decimal `json:"litres"`
	}

	// DailySummary is the dashboard view of one day.
	DailySummary struct {
		Date               core.Date       `json:"date"`
		DeliveredLitres    decimal.Decimal `json:"delivered_litres"`
		DeliveredCount     int             `json:"delivered_count"`
		EstimatedRevenue   decimal.Decimal `json:"estimated_revenue"`
		ActiveCustomers    int             `json:"active_customers"`
		TotalCustomers     int             `json:"total_customers"`
		PendingCollections decimal.Decimal `json:"pending_collections"`
		Trend              []DayTotal      `json:"trend"`
	}
)

// DailySummary aggregates the deliveries of date. Revenue is estimated at each
// customer's current rate. Trend covers the TrendDays days ending at date.
func (s *Store) DailySummary(date core.Date) DailySummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := DailySummary{
		Date:               date,
		DeliveredLitres:    decimal.Zero,
		EstimatedRevenue:   decimal.Zero,
		PendingCollections: decimal.Zero,
	}
	for _, e := range s.knownEntries(date) {
		if !e.IsDelivered {
			continue
		}
		c, err := s.customers.Get(e.CustomerID)
		if err != nil {
			continue
		}
		sum.DeliveredCount++
		sum.DeliveredLitres = sum.DeliveredLitres.Add(e.Quantity)
		sum.EstimatedRevenue = sum.EstimatedRevenue.Add(e.Quantity.Mul(c.PricePerLitre))
	}
	for _, c := range s.customers.List() {
		sum.TotalCustomers++
		if c.IsActive {
			sum.ActiveCustomers++
		}
		if c.Balance.IsPositive() {
			sum.PendingCollections = sum.PendingCollections.Add(c.Balance)
		}
	}
	for i := TrendDays - 1; i >= 0; i-- {
		day := date.AddDays(-i)
		litres := decimal.Zero
		for _, e := range s.knownEntries(day) {
			if e.IsDelivered {
				litres = litres.Add(e.Quantity)
			}
		}
		sum.Trend = append(sum.Trend, DayTotal{Date: day, Litres: litres})
	}
	return sum
}
