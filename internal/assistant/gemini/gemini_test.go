package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"milkround/internal/assistant"
	"milkround/internal/core"
)

func fakeAPI(t *testing.T, reply string, status int) (*httptest.Server, *[]string) {
	t.Helper()
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/test-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.Unmarshal(body, &req); err == nil && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			prompts = append(prompts, req.Contents[0].Parts[0].Text)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": reply}},
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &prompts
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(context.Background(), "test-key", "test-model",
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSuggestOrderDecodesNames(t *testing.T) {
	srv, prompts := fakeAPI(t, `["Z", "A"]`, http.StatusOK)
	c := newTestClient(t, srv)

	names, err := c.SuggestOrder(context.Background(), []core.Customer{
		{Name: "A", Address: "1 Main St"},
		{Name: "Z", Address: "9 Main St"},
	})
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(names) != 2 || names[0] != "Z" || names[1] != "A" {
		t.Fatalf("names = %v", names)
	}
	if len(*prompts) != 1 || !strings.Contains((*prompts)[0], "Z: 9 Main St") {
		t.Fatalf("prompt did not list addresses: %v", *prompts)
	}
}

func TestServerErrorIsReturned(t *testing.T) {
	srv, _ := fakeAPI(t, "", http.StatusBadRequest)
	c := newTestClient(t, srv)
	if _, err := c.Summarize(context.Background(), insightRequest()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`["a","b"]`, 2, false},
		{"```json\n[\"a\"]\n```", 1, false},
		{`[]`, 0, false},
		{`not json`, 0, true},
		{`{"a":1}`, 0, true},
	}
	for _, tt := range tests {
		got, err := parseNames(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseNames(%q) err = %v", tt.in, err)
		}
		if len(got) != tt.want {
			t.Fatalf("parseNames(%q) = %v", tt.in, got)
		}
	}
}

func insightRequest() assistant.InsightRequest {
	return assistant.InsightRequest{
		Date:          core.NewDate(2024, 3, 1),
		TotalQuantity: decimal.NewFromInt(12),
		TotalRevenue:  decimal.NewFromInt(720),
		CustomerCount: 4,
	}
}

func TestMessageUsesCandidateText(t *testing.T) {
	srv, prompts := fakeAPI(t, "Namaste, your bill is ready.", http.StatusOK)
	c := newTestClient(t, srv)
	got, err := c.GenerateMessage(context.Background(), assistant.MessageRequest{
		Customer: core.Customer{Name: "Anjali"},
		Month:    core.Month{Year: 2024, Month: 3},
		TotalDue: decimal.NewFromInt(186),
		DueDate:  core.NewDate(2024, 4, 5),
	})
	if err != nil || got != "Namaste, your bill is ready." {
		t.Fatalf("got %q, %v", got, err)
	}
	if !strings.Contains((*prompts)[0], "Anjali") || !strings.Contains((*prompts)[0], "2024-04-05") {
		t.Fatalf("prompt = %q", (*prompts)[0])
	}
}

func TestSuggestOrderRequestsJSONArray(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"[\"A\"]"}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	if _, err := newTestClient(t, srv).SuggestOrder(context.Background(), []core.Customer{{Name: "A"}}); err != nil {
		t.Fatalf("suggest: %v", err)
	}
	for _, want := range []string{`"responseMimeType":"application/json"`, `"responseSchema"`, `"ARRAY"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body %s missing %s", body, want)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(context.Background(), "", "", WithBaseURL("http://127.0.0.1/")); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
