package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "milkround/internal/sheets"
)

// fakeSheets serves the three values endpoints the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	rows    [][]any
	updates []string
	appends int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"values": f.rows})
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
		var vr gsheet.ValueRange
		json.NewDecoder(r.Body).Decode(&vr)
		f.rows = append(f.rows, vr.Values...)
		f.appends++
		json.NewEncoder(w).Encode(map[string]any{"updates": map[string]any{"updatedRange": "Notices!A9:K9"}})
	case r.Method == http.MethodPut:
		f.updates = append(f.updates, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"updatedRange": "x"})
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func newFakeClient(t *testing.T, f *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	c, err := New(svc, "sheet-id", "")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestUpsertAppendsThenUpdates(t *testing.T) {
	f := &fakeSheets{rows: [][]any{Header}}
	c := newFakeClient(t, f)
	ctx := context.Background()
	row := ports.NoticeRow{CustomerID: "c1", Month: "2024-03"}

	ref, err := c.UpsertNotice(ctx, row)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Notices!A9:K9" || f.appends != 1 {
		t.Fatalf("ref = %q, appends = %d", ref, f.appends)
	}

	ref, err = c.UpsertNotice(ctx, row)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ref != "Notices!A2:K2" || f.appends != 1 || len(f.updates) != 1 {
		t.Fatalf("ref = %q, appends = %d, updates = %v", ref, f.appends, f.updates)
	}
}

func TestNewRequiresSpreadsheet(t *testing.T) {
	if _, err := New(nil, " ", ""); err == nil {
		t.Fatal("expected error")
	}
	c := &Client{spreadsheetID: "x", sheet: "Notices"}
	if _, err := c.UpsertNotice(context.Background(), ports.NoticeRow{CustomerID: "c", Month: "m"}); err == nil {
		t.Fatal("expected error without service")
	}
}
