package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.ValidationError{Field: "name", Reason: "empty"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("parse: %w", core.ErrInvalidDate), http.StatusUnprocessableEntity},
		{&core.NotFoundError{Kind: "customer", ID: "x"}, http.StatusNotFound},
		{&core.InvalidRateError{CustomerID: "x", Rate: decimal.Zero}, http.StatusConflict},
		{fmt.Errorf("%w: march", core.ErrAlreadyPosted), http.StatusConflict},
		{&core.ExternalServiceError{Service: "message"}, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestDomainErrorHidesInternalDetail(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	DomainError(r, errors.New("sqlite: disk I/O error"), "read").Write(rec)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode[ErrorBody](t, rec); body.Error != "internal error" {
		t.Fatalf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	DomainError(r, &core.ValidationError{Field: "amount", Reason: "must be positive"}, "pay").Write(rec)
	if body := decode[ErrorBody](t, rec); body.Field != "amount" || body.Error != "invalid amount: must be positive" {
		t.Fatalf("body = %+v", body)
	}
}

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("Location", "/x").Body(map[string]int{"n": 1}).Write(rec)
	if rec.Code != http.StatusCreated || rec.Header().Get("Location") != "/x" || rec.Body.String() != "{\"n\":1}\n" {
		t.Fatalf("response = %d %v %q", rec.Code, rec.Header(), rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("no content response = %d %q", rec.Code, rec.Body.String())
	}
}
