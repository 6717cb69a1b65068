package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"milkround/internal/config"
	"milkround/internal/core"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db", SnapshotInterval: time.Second}, ""},
		{"unknown", Config{Type: "sheets"}, "invalid backend type"},
		{"sqlite without path", Config{Type: SQLiteBackend, SnapshotInterval: time.Second}, "database path is required"},
		{"sqlite without interval", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, "snapshot interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "a.db", SnapshotInterval: time.Minute, Timezone: "UTC"}
	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "a.db" || got.Location != time.UTC {
		t.Fatalf("config = %+v", got)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestMemoryBackend(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if res.Store == nil || res.Snapshotter != nil {
		t.Fatalf("result = %+v", res)
	}
	res.Start(context.Background())
	if err := res.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestSQLiteBackendPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:             SQLiteBackend,
		SQLiteDBPath:     filepath.Join(t.TempDir(), "book.db"),
		SnapshotInterval: time.Hour,
	}
	factory := NewFactory(nil)

	first, err := factory.CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	c, err := first.Store.AddCustomer(core.Customer{
		Name:            "Ravi",
		Address:         "12 Lane",
		Mobile:          "9876543210",
		DefaultQuantity: decimal.RequireFromString("1.5"),
		PricePerLitre:   decimal.RequireFromString("60"),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := first.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	second, err := factory.CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Cleanup(ctx)
	got, err := second.Store.Customer(c.ID)
	if err != nil {
		t.Fatalf("customer after restart: %v", err)
	}
	if got.Name != "Ravi" || !got.PricePerLitre.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("customer = %+v", got)
	}
}
