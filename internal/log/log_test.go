package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func bufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := bufferLogger(&buf, ComponentStore)

	logger.Info("saved", "customers", 2)
	logger.WithComponent(ComponentBilling).Fields(context.Background(), slog.LevelWarn, "posted",
		NewFields().WithCustomer("c1").WithError(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"component=store", "customers=2", "component=billing", "customer_id=c1", "error=boom", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestFieldsKeepsExplicitComponent(t *testing.T) {
	var buf bytes.Buffer
	bufferLogger(&buf, ComponentApp).Fields(context.Background(), slog.LevelInfo, "x", NewFields().WithComponent(ComponentHTTP))
	if !strings.Contains(buf.String(), "component=http") || strings.Contains(buf.String(), "component=app") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestContextLogger(t *testing.T) {
	if got := FromContext(context.Background()).Component(); got != ComponentApp {
		t.Fatalf("default component = %q", got)
	}

	var buf bytes.Buffer
	logger := bufferLogger(&buf, ComponentHTTP)
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		}),
	))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(bufferLogger(&buf, ComponentHTTP))
	r := httptest.NewRequest(http.MethodPost, "/api/customers?q=a", nil)

	sl.LogHTTPEnd(context.Background(), r, http.StatusNotFound, 3*time.Millisecond, "10.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, http.StatusInternalServerError, time.Millisecond, "10.0.0.1")
	sl.LogError(context.Background(), "failed", errors.New("disk"), ComponentStorage, OpSave, nil)

	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=404", "level=ERROR", "status_code=500", "component=storage", "operation=save", "error=disk"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
