package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"milkround/internal/core"
)

type stubMessages struct {
	text string
	err  error
}

func (s stubMessages) GenerateMessage(context.Context, MessageRequest) (string, error) {
	return s.text, s.err
}

type stubRoutes struct {
	names []string
	err   error
}

func (s stubRoutes) SuggestOrder(context.Context, []core.Customer) ([]string, error) {
	return s.names, s.err
}

type slowInsights struct{}

func (slowInsights) Summarize(ctx context.Context, _ InsightRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func messageRequest() MessageRequest {
	return MessageRequest{
		Customer: core.Customer{ID: "c1", Name: "Sharma Ji"},
		Month:    core.Month{Year: 2024, Month: time.March},
		TotalDue: decimal.NewFromInt(900),
		DueDate:  core.NewDate(2024, time.April, 5),
	}
}

func TestFallbackMessage(t *testing.T) {
	got := FallbackMessage(messageRequest())
	want := "Hello Sharma Ji, your bill for 2024-03 is 900. Please pay by 2024-04-05. Thanks!"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestGuardMessage(t *testing.T) {
	tests := []struct {
		name     string
		gen      MessageGenerator
		want     string
		fallback bool
	}{
		{"generated", stubMessages{text: "  Dear customer, please pay.\n"}, "Dear customer, please pay.", false},
		{"error", stubMessages{err: errors.New("boom")}, FallbackMessage(messageRequest()), true},
		{"empty reply", stubMessages{text: "   "}, FallbackMessage(messageRequest()), true},
		{"not configured", nil, FallbackMessage(messageRequest()), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(tt.gen, nil, nil)
			out := g.Message(context.Background(), messageRequest())
			if out.Value != tt.want || out.Fallback != tt.fallback {
				t.Fatalf("got %+v", out)
			}
			if tt.fallback && !errors.Is(out.Cause, core.ErrExternalService) {
				t.Fatalf("cause %v should be an external service error", out.Cause)
			}
		})
	}
}

func TestGuardRouteFailureKeepsOrder(t *testing.T) {
	customers := []core.Customer{{ID: "a", Name: "A"}, {ID: "z", Name: "Z"}}
	g := NewGuard(nil, stubRoutes{err: errors.New("quota")}, nil)

	out := g.SuggestOrder(context.Background(), customers)
	if !out.Fallback || len(out.Value) != 2 || out.Value[0] != "A" || out.Value[1] != "Z" {
		t.Fatalf("got %+v", out)
	}
	var ext *core.ExternalServiceError
	if !errors.As(out.Cause, &ext) || ext.Service != "route" {
		t.Fatalf("cause = %v", out.Cause)
	}
}

func TestGuardRoutePassesSuggestion(t *testing.T) {
	g := NewGuard(nil, stubRoutes{names: []string{"Z", "Unknown"}}, nil)
	out := g.SuggestOrder(context.Background(), []core.Customer{{ID: "a", Name: "A"}})
	if out.Fallback || len(out.Value) != 2 || out.Value[0] != "Z" {
		t.Fatalf("got %+v", out)
	}
}

func TestGuardEmptyRouteReplyFallsBack(t *testing.T) {
	customers := []core.Customer{{ID: "a", Name: "A"}, {ID: "z", Name: "Z"}}
	g := NewGuard(nil, stubRoutes{names: []string{}}, nil)

	out := g.SuggestOrder(context.Background(), customers)
	if !out.Fallback || len(out.Value) != 2 || out.Value[0] != "A" || out.Value[1] != "Z" {
		t.Fatalf("got %+v", out)
	}
	if !errors.Is(out.Cause, core.ErrExternalService) {
		t.Fatalf("cause = %v", out.Cause)
	}
}

func TestGuardInsightTimeout(t *testing.T) {
	g := NewGuard(nil, nil, slowInsights{}, WithTimeout(10*time.Millisecond))
	out := g.Summarize(context.Background(), InsightRequest{Date: core.NewDate(2024, 3, 1)})
	if !out.Fallback || out.Value != InsightPlaceholder {
		t.Fatalf("got %+v", out)
	}
	if !errors.Is(out.Cause, context.DeadlineExceeded) {
		t.Fatalf("cause = %v", out.Cause)
	}
}
