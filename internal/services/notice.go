package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"milkround/internal/amqp"
	"milkround/internal/assistant"
	"milkround/internal/billing"
	"milkround/internal/core"
	applog "milkround/internal/log"
)

const (
	DefaultPhoneRegion = "IN"
	DefaultConcurrency = 4
)

type (
	// StatementSource is the part of the book a notice needs.
	StatementSource interface {
		Statement(customerID string, month core.Month) (core.Customer, billing.Statement, error)
		Customers() []core.Customer
	}

	NoticePublisher interface {
		PublishBillNotice(ctx context.Context, msg *amqp.BillNoticeMessage) error
	}
)

// Notice is a bill statement with its message text and share link.
type Notice struct {
	Customer  core.Customer     `json:"customer"`
	Statement billing.Statement `json:"statement"`
	Message   string            `json:"message"`
	Fallback  bool              `json:"fallback"`
	ShareLink string            `json:"share_link"`
	Published bool              `json:"published"`
	Stale     bool              `json:"stale,omitempty"`
}

// NoticeFailure records a customer whose notice could not be prepared.
type NoticeFailure struct {
	CustomerID string `json:"customer_id"`
	Reason     string `json:"error"`
	Err        error  `json:"-"`
}

type MonthNotices struct {
	Month    core.Month      `json:"month"`
	Notices  []Notice        `json:"notices"`
	Skipped  []string        `json:"skipped,omitempty"`
	Failures []NoticeFailure `json:"failures,omitempty"`
}

type NoticeService struct {
	book        StatementSource
	guard       *assistant.Guard
	publisher   NoticePublisher
	desk        *MessageDesk
	region      string
	concurrency int
	now         func() time.Time
	logger      *applog.Logger
}

type NoticeOption func(*NoticeService)

// WithPublisher sends every prepared notice to p. Publish failures are logged
// and leave Published unset; they never fail the notice.
func WithPublisher(p NoticePublisher) NoticeOption {
	return func(s *NoticeService) { s.publisher = p }
}

func WithPhoneRegion(region string) NoticeOption {
	return func(s *NoticeService) {
		if region != "" {
			s.region = region
		}
	}
}

// WithConcurrency bounds the collaborator calls in flight during PrepareMonth.
func WithConcurrency(n int) NoticeOption {
	return func(s *NoticeService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithNoticeLogger(l *applog.Logger) NoticeOption {
	return func(s *NoticeService) { s.logger = l }
}

func WithNoticeClock(now func() time.Time) NoticeOption {
	return func(s *NoticeService) { s.now = now }
}

func NewNoticeService(book StatementSource, guard *assistant.Guard, opts ...NoticeOption) *NoticeService {
	s := &NoticeService{
		book:        book,
		guard:       guard,
		desk:        NewMessageDesk(),
		region:      DefaultPhoneRegion,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentNotice)
	return s
}

// Draft prepares a notice for preview without publishing it. When a newer
// draft for the same customer was started meanwhile, the result is marked Stale.
func (s *NoticeService) Draft(ctx context.Context, customerID string, month core.Month) (Notice, error) {
	ticket := s.desk.Begin(customerID)
	n, err := s.prepare(ctx, customerID, month)
	if !s.desk.Finish(ticket) {
		n.Stale = true
	}
	return n, err
}

// PrepareNotice builds the notice of one customer and publishes it.
func (s *NoticeService) PrepareNotice(ctx context.Context, customerID string, month core.Month) (Notice, error) {
	n, err := s.prepare(ctx, customerID, month)
	if err != nil {
		return Notice{}, err
	}
	s.publish(ctx, &n)
	return n, nil
}

// PrepareMonth prepares and publishes notices for every customer with
// something to pay. A failing customer is recorded and does not stop the
// others; only cancellation of ctx aborts the batch.
func (s *NoticeService) PrepareMonth(ctx context.Context, month core.Month) (MonthNotices, error) {
	customers := s.book.Customers()
	notices := make([]*Notice, len(customers))
	failures := make([]error, len(customers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, c := range customers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := s.prepare(gctx, c.ID, month)
			if err != nil {
				failures[i] = err
				return nil
			}
			if !n.Statement.TotalDue.IsPositive() {
				return nil
			}
			s.publish(gctx, &n)
			notices[i] = &n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MonthNotices{}, fmt.Errorf("prepare notices for %s: %w", month, err)
	}

	out := MonthNotices{Month: month, Notices: []Notice{}}
	for i, c := range customers {
		switch {
		case failures[i] != nil:
			out.Failures = append(out.Failures, NoticeFailure{CustomerID: c.ID, Reason: failures[i].Error(), Err: failures[i]})
		case notices[i] != nil:
			out.Notices = append(out.Notices, *notices[i])
		default:
			out.Skipped = append(out.Skipped, c.ID)
		}
	}

	s.logger.InfoContext(ctx, "month notices prepared",
		applog.FieldMonth, month.String(),
		"notices", len(out.Notices),
		"skipped", len(out.Skipped),
		"failures", len(out.Failures))
	return out, nil
}

func (s *NoticeService) prepare(ctx context.Context, customerID string, month core.Month) (Notice, error) {
	c, st, err := s.book.Statement(customerID, month)
	if err != nil {
		if errors.Is(err, core.ErrInvalidRate) {
			s.logger.WarnContext(ctx, "cannot bill customer",
				applog.FieldCustomerID, customerID,
				applog.FieldMonth, month.String(),
				applog.FieldError, err)
		}
		return Notice{}, err
	}

	out := s.guard.Message(ctx, assistant.MessageRequest{
		Customer: c,
		Month:    month,
		TotalDue: st.TotalDue,
		DueDate:  st.DueDate,
	})
	return Notice{
		Customer:  c,
		Statement: st,
		Message:   out.Value,
		Fallback:  out.Fallback,
		ShareLink: ShareLink(c.Mobile, s.region, out.Value),
	}, nil
}

func (s *NoticeService) publish(ctx context.Context, n *Notice) {
	if s.publisher == nil {
		return
	}
	msg := &amqp.BillNoticeMessage{
		CustomerID:   n.Customer.ID,
		CustomerName: n.Customer.Name,
		Mobile:       n.Customer.Mobile,
		Month:        n.Statement.Bill.Month.String(),
		Quantity:     n.Statement.Bill.Quantity,
		Amount:       n.Statement.Bill.Amount,
		TotalDue:     n.Statement.TotalDue,
		DueDate:      n.Statement.DueDate.String(),
		Message:      n.Message,
		ShareLink:    n.ShareLink,
		Fallback:     n.Fallback,
		Timestamp:    s.now(),
	}
	if err := s.publisher.PublishBillNotice(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish bill notice",
			applog.FieldCustomerID, n.Customer.ID,
			applog.FieldMonth, msg.Month,
			applog.FieldError, err)
		return
	}
	n.Published = true
}
