package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
	"github.com/micaaprocofio/ut5-tfu/internal/existence"
)

var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCustomerUnverifiable = errors.New("customer service unavailable")
)

type OrderCreator interface {
	Create(ctx context.Context, o domain.NewOrder, date time.Time) (*domain.Order, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Admitter gates order creation on a single customer existence check. An order
// is either rejected before anything is written, or inserted once.
type Admitter struct {
	checker    existence.Checker
	store      OrderCreator
	publisher  Publisher
	now        func() time.Time
	admissions metric.Int64Counter
	logger     *slog.Logger
}

// NewAdmitter accepts a nil publisher, in which case no admission events are emitted.
func NewAdmitter(checker existence.Checker, store OrderCreator, publisher Publisher, logger *slog.Logger) *Admitter {
	admissions, err := otel.Meter("orders").Int64Counter("order_admissions_total",
		metric.WithDescription("Order admission attempts by outcome"),
	)
	if err != nil {
		logger.Error("failed to create admission counter", "error", err)
	}

	return &Admitter{
		checker:    checker,
		store:      store,
		publisher:  publisher,
		now:        time.Now,
		admissions: admissions,
		logger:     logger,
	}
}

func (a *Admitter) Admit(ctx context.Context, req domain.NewOrder) (*domain.Order, error) {
	verdict, err := a.checker.Check(ctx, req.CustomerID)
	if err != nil {
		a.count(ctx, "unverifiable")
		if errors.Is(err, existence.ErrUnverifiable) {
			return nil, fmt.Errorf("%w: %v", ErrCustomerUnverifiable, err)
		}
		return nil, err
	}

	if !verdict.Exists {
		a.count(ctx, "rejected")
		return nil, ErrCustomerNotFound
	}

	order, err := a.store.Create(ctx, req, a.now().UTC())
	if err != nil {
		a.count(ctx, "failed")
		return nil, err
	}

	a.count(ctx, "accepted")
	a.publish(ctx, order, verdict.Decision)

	return order, nil
}

func (a *Admitter) publish(ctx context.Context, order *domain.Order, decision existence.Decision) {
	if a.publisher == nil {
		return
	}

	event := domain.OrderAdmittedEvent{
		EventID:    uuid.NewString(),
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Decision:   decision.String(),
		AdmittedAt: order.Date,
	}
	if err := a.publisher.Publish(ctx, strconv.FormatInt(order.ID, 10), event); err != nil {
		a.logger.Error("failed to publish order admitted event", "error", err, "order_id", order.ID)
	}
}

func (a *Admitter) count(ctx context.Context, outcome string) {
	if a.admissions == nil {
		return
	}
	a.admissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
