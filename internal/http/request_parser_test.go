package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"milkround/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"names":["a"]}`, ""},
		{"empty", ``, "must not be empty"},
		{"unknown field", `{"other":1}`, "unknown field"},
		{"trailing object", `{"names":[]}{"names":[]}`, "single JSON object"},
		{"not json", `names=a`, "malformed request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst applyRouteRequest
			err := decodeJSON(httptest.NewRecorder(), r, &dst)
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

func TestDateAndMonthParams(t *testing.T) {
	def := core.NewDate(2024, 3, 15)

	r := httptest.NewRequest(http.MethodGet, "/?date=2024-02-29&month=2024-02", nil)
	d, err := dateParam(r, "date", def)
	if err != nil || d.String() != "2024-02-29" {
		t.Fatalf("date = %v, %v", d, err)
	}
	m, err := monthParam(r, "month", def.BillingMonth())
	if err != nil || m != (core.Month{Year: 2024, Month: time.February}) {
		t.Fatalf("month = %v, %v", m, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	if d, _ := dateParam(r, "date", def); d != def {
		t.Fatalf("default date = %v", d)
	}
	if m, _ := monthParam(r, "month", def.BillingMonth()); m.String() != "2024-03" {
		t.Fatalf("default month = %v", m)
	}

	r = httptest.NewRequest(http.MethodGet, "/?date=2024-02-30&month=13", nil)
	if _, err := dateParam(r, "date", def); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected invalid date, got %v", err)
	}
	if _, err := monthParam(r, "month", def.BillingMonth()); !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected invalid month, got %v", err)
	}
}

func TestParseShiftAndSanitize(t *testing.T) {
	if parseShift(" evening ") != core.Evening || parseShift("MORNING") != core.Morning {
		t.Fatal("shift names should be case-insensitive")
	}
	if parseShift("Night").Valid() {
		t.Fatal("unknown shift should stay invalid")
	}
	if got := sanitizeInput("  Ravi\x00 Kumar\t "); got != "Ravi Kumar" {
		t.Fatalf("sanitizeInput = %q", got)
	}
}

func TestBoolParam(t *testing.T) {
	for query, want := range map[string]bool{"?confirm=true": true, "?confirm=1": true, "?confirm=no": false, "": false} {
		r := httptest.NewRequest(http.MethodDelete, "/"+query, nil)
		if got := boolParam(r, "confirm"); got != want {
			t.Fatalf("boolParam(%q) = %v", query, got)
		}
	}
}
