package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"milkround/internal/core"
	applog "milkround/internal/log"
)

// InsightPlaceholder is shown when no insight text can be produced.
const InsightPlaceholder = "Keep tracking your daily sales to see insights here."

// Outcome is a collaborator result. When Fallback is set, Value is the
// deterministic substitute and Cause the *core.ExternalServiceError behind it.
type Outcome[T any] struct {
	Value    T
	Fallback bool
	Cause    error
}

// FallbackMessage is the fixed bill notice text.
func FallbackMessage(req MessageRequest) string {
	return fmt.Sprintf("Hello %s, your bill for %s is %s. Please pay by %s. Thanks!",
		req.Customer.Name, req.Month, req.TotalDue.String(), req.DueDate)
}

// FallbackOrder keeps the customers in their current order.
func FallbackOrder(customers []core.Customer) []string {
	names := make([]string, len(customers))
	for i, c := range customers {
		names[i] = c.Name
	}
	return names
}

// Guard calls the collaborators with a timeout and never returns their errors.
type Guard struct {
	messages MessageGenerator
	routes   RouteSuggester
	insights InsightSummarizer
	timeout  time.Duration
	logger   *applog.Logger
}

type GuardOption func(*Guard)

// WithTimeout bounds every collaborator call; zero means no extra bound.
func WithTimeout(d time.Duration) GuardOption {
	return func(g *Guard) { g.timeout = d }
}

func WithLogger(l *applog.Logger) GuardOption {
	return func(g *Guard) { g.logger = l }
}

// NewGuard wraps the collaborators. Nil ports are treated as Unavailable.
func NewGuard(messages MessageGenerator, routes RouteSuggester, insights InsightSummarizer, opts ...GuardOption) *Guard {
	g := &Guard{
		messages: messages,
		routes:   routes,
		insights: insights,
		logger:   applog.Discard(),
	}
	if g.messages == nil {
		g.messages = Unavailable{}
	}
	if g.routes == nil {
		g.routes = Unavailable{}
	}
	if g.insights == nil {
		g.insights = Unavailable{}
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.WithComponent(applog.ComponentAssistant)
	return g
}

// Message returns generated notice text, or FallbackMessage on any failure
// including an empty reply.
func (g *Guard) Message(ctx context.Context, req MessageRequest) Outcome[string] {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	text, err := g.messages.GenerateMessage(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyReply
	}
	if err != nil {
		cause := g.fail(ctx, "message", err, applog.NewFields().
			WithCustomer(req.Customer.ID).
			WithMonth(req.Month))
		return Outcome[string]{Value: FallbackMessage(req), Fallback: true, Cause: cause}
	}
	return Outcome[string]{Value: strings.TrimSpace(text)}
}

// SuggestOrder returns the suggested names, or the current order on failure
// including an empty list.
func (g *Guard) SuggestOrder(ctx context.Context, customers []core.Customer) Outcome[[]string] {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	names, err := g.routes.SuggestOrder(ctx, customers)
	if err == nil && len(names) == 0 {
		err = errEmptyReply
	}
	if err != nil {
		fields := applog.NewFields()
		fields["customers"] = len(customers)
		cause := g.fail(ctx, "route", err, fields)
		return Outcome[[]string]{Value: FallbackOrder(customers), Fallback: true, Cause: cause}
	}
	return Outcome[[]string]{Value: names}
}

// Summarize returns advisory text, or InsightPlaceholder on failure.
func (g *Guard) Summarize(ctx context.Context, req InsightRequest) Outcome[string] {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	text, err := g.insights.Summarize(ctx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyReply
	}
	if err != nil {
		cause := g.fail(ctx, "insight", err, applog.NewFields().WithDate(req.Date))
		return Outcome[string]{Value: InsightPlaceholder, Fallback: true, Cause: cause}
	}
	return Outcome[string]{Value: strings.TrimSpace(text)}
}

var errEmptyReply = errors.New("empty reply")

func (g *Guard) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *Guard) fail(ctx context.Context, service string, err error, fields applog.LogFields) error {
	cause := &core.ExternalServiceError{Service: service, Err: err}
	fields[applog.FieldService] = service
	g.logger.Fields(ctx, slog.LevelWarn, "collaborator failed, using fallback", fields.WithError(err).WithOperation(applog.OpGenerate))
	return cause
}
