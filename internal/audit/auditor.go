// Package audit re-verifies orders that were admitted while the customers
// service could not be reached.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/micaaprocofio/ut5-tfu/internal/domain"
	"github.com/micaaprocofio/ut5-tfu/internal/existence"
)

type Auditor struct {
	oracle   existence.Oracle
	audits   metric.Int64Counter
	orphaned metric.Int64Counter
	logger   *slog.Logger
}

func NewAuditor(oracle existence.Oracle, logger *slog.Logger) *Auditor {
	meter := otel.Meter("audit")

	audits, err := meter.Int64Counter("admission_audits_total",
		metric.WithDescription("Admitted orders re-verified by outcome"),
	)
	if err != nil {
		logger.Error("failed to create audit counter", "error", err)
	}

	orphaned, err := meter.Int64Counter("orphaned_orders_total",
		metric.WithDescription("Orders admitted for customers that do not exist"),
	)
	if err != nil {
		logger.Error("failed to create orphan counter", "error", err)
	}

	return &Auditor{
		oracle:   oracle,
		audits:   audits,
		orphaned: orphaned,
		logger:   logger,
	}
}

// Handle never fails: a malformed payload is dropped, and an order whose
// customer is still unverifiable is logged and left for manual follow-up.
func (a *Auditor) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderAdmittedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		a.logger.Error("skipping malformed admission event", "error", err)
		a.count(ctx, "malformed")
		return nil
	}

	if event.Decision != existence.DecisionUnknown.String() {
		a.logger.Debug("admission already verified", "order_id", event.OrderID, "decision", event.Decision)
		a.count(ctx, "verified")
		return nil
	}

	decision, err := a.oracle.Lookup(ctx, event.CustomerID)
	switch decision {
	case existence.DecisionExists:
		a.logger.Info("unverified order confirmed", "order_id", event.OrderID, "customer_id", event.CustomerID)
		a.count(ctx, "confirmed")
	case existence.DecisionAbsent:
		a.logger.Warn("orphaned order",
			"order_id", event.OrderID,
			"customer_id", event.CustomerID,
			"admitted_at", event.AdmittedAt,
		)
		a.count(ctx, "orphaned")
		if a.orphaned != nil {
			a.orphaned.Add(ctx, 1)
		}
	default:
		a.logger.Warn("order still unverifiable",
			"order_id", event.OrderID,
			"customer_id", event.CustomerID,
			"error", err,
		)
		a.count(ctx, "unverifiable")
	}

	return nil
}

func (a *Auditor) count(ctx context.Context, outcome string) {
	if a.audits == nil {
		return
	}
	a.audits.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
