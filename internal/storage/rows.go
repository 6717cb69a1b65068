package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

func (r *SQLiteRepository) loadCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, address, mobile, default_quantity, price_per_litre, balance, is_active, subscription_type
		 FROM customers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []core.Customer
	for rows.Next() {
		var c core.Customer
		var sub string
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Mobile,
			&c.DefaultQuantity, &c.PricePerLitre, &c.Balance, &c.IsActive, &sub); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.SubscriptionType = core.SubscriptionType(sub)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadDeliveries(ctx context.Context) ([]core.DeliveryLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, date, shift, quantity, is_delivered FROM delivery_logs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query delivery logs: %w", err)
	}
	defer rows.Close()

	var out []core.DeliveryLog
	for rows.Next() {
		var e core.DeliveryLog
		var date, shift string
		if err := rows.Scan(&e.ID, &e.CustomerID, &date, &shift, &e.Quantity, &e.IsDelivered); err != nil {
			return nil, fmt.Errorf("scan delivery log: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("delivery log %s: %w", e.ID, err)
		}
		e.Shift = core.Shift(shift)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_id, date, amount, method FROM payments ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var p core.Payment
		var date, method string
		if err := rows.Scan(&p.ID, &p.CustomerID, &date, &p.Amount, &method); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if p.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("payment %s: %w", p.ID, err)
		}
		p.Method = core.PaymentMethod(method)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadPostedBills(ctx context.Context) ([]core.PostedBill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT customer_id, month, quantity, amount, posted_at FROM posted_bills ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query posted bills: %w", err)
	}
	defer rows.Close()

	var out []core.PostedBill
	for rows.Next() {
		var b core.PostedBill
		var month, postedAt string
		var qty, amount decimal.Decimal
		if err := rows.Scan(&b.CustomerID, &month, &qty, &amount, &postedAt); err != nil {
			return nil, fmt.Errorf("scan posted bill: %w", err)
		}
		if b.Month, err = core.ParseMonth(month); err != nil {
			return nil, fmt.Errorf("posted bill %s: %w", b.CustomerID, err)
		}
		if b.PostedAt, err = time.Parse(time.RFC3339Nano, postedAt); err != nil {
			return nil, fmt.Errorf("posted bill %s: %w", b.CustomerID, err)
		}
		b.Quantity, b.Amount = qty, amount
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadRouteOrder(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT customer_id FROM route_order ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query route order: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id sql.NullString
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan route order: %w", err)
		}
		if id.Valid {
			out = append(out, id.String)
		}
	}
	return out, rows.Err()
}
