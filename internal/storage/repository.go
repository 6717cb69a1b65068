package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"milkround/internal/core"
)

// SQLiteRepository persists whole snapshots of the book. Decimals are stored
// as TEXT so no precision is lost.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer; SaveAll runs in a single transaction
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadAll reads every collection in its saved order.
func (r *SQLiteRepository) LoadAll(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	var err error
	if snap.Customers, err = r.loadCustomers(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Deliveries, err = r.loadDeliveries(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.Payments, err = r.loadPayments(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.PostedBills, err = r.loadPostedBills(ctx); err != nil {
		return core.Snapshot{}, err
	}
	if snap.RouteOrder, err = r.loadRouteOrder(ctx); err != nil {
		return core.Snapshot{}, err
	}
	return snap, nil
}

// SaveAll replaces every stored row with snap in one transaction.
func (r *SQLiteRepository) SaveAll(ctx context.Context, snap core.Snapshot) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range []string{"customers", "delivery_logs", "payments", "posted_bills", "route_order"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, c := range snap.Customers {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO customers (position, id, name, address, mobile, default_quantity, price_per_litre, balance, is_active, subscription_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, c.ID, c.Name, c.Address, c.Mobile,
			c.DefaultQuantity.String(), c.PricePerLitre.String(), c.Balance.String(),
			c.IsActive, string(c.SubscriptionType)); err != nil {
			return fmt.Errorf("insert customer %s: %w", c.ID, err)
		}
	}
	for i, e := range snap.Deliveries {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO delivery_logs (position, id, customer_id, date, shift, quantity, is_delivered)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, e.ID, e.CustomerID, e.Date.String(), string(e.Shift), e.Quantity.String(), e.IsDelivered); err != nil {
			return fmt.Errorf("insert delivery %s: %w", e.ID, err)
		}
	}
	for i, p := range snap.Payments {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO payments (position, id, customer_id, date, amount, method) VALUES (?, ?, ?, ?, ?, ?)`,
			i, p.ID, p.CustomerID, p.Date.String(), p.Amount.String(), string(p.Method)); err != nil {
			return fmt.Errorf("insert payment %s: %w", p.ID, err)
		}
	}
	for i, b := range snap.PostedBills {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO posted_bills (position, customer_id, month, quantity, amount, posted_at) VALUES (?, ?, ?, ?, ?, ?)`,
			i, b.CustomerID, b.Month.String(), b.Quantity.String(), b.Amount.String(), b.PostedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert posted bill %s/%s: %w", b.CustomerID, b.Month, err)
		}
	}
	for i, id := range snap.RouteOrder {
		if _, err = tx.ExecContext(ctx, `INSERT INTO route_order (position, customer_id) VALUES (?, ?)`, i, id); err != nil {
			return fmt.Errorf("insert route position %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
