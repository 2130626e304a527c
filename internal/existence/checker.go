package existence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrUnverifiable is returned by StrictChecker when the customers service gave no answer.
var ErrUnverifiable = errors.New("customer existence could not be verified")

// Oracle is the raw trinary lookup. *Client implements it.
type Oracle interface {
	Lookup(ctx context.Context, customerID int64) (Decision, error)
}

// Verdict is what admission acts on. Decision keeps the underlying answer so an
// admitted order can record whether it was actually verified.
type Verdict struct {
	Exists   bool
	Decision Decision
}

// Checker resolves an Oracle decision into a verdict. Implementations differ only
// in how DecisionUnknown is treated.
type Checker interface {
	Check(ctx context.Context, customerID int64) (Verdict, error)
}

type decisionRecorder struct {
	policy string
	checks metric.Int64Counter
	logger *slog.Logger
}

func newDecisionRecorder(policy string, logger *slog.Logger) decisionRecorder {
	checks, err := otel.Meter("existence").Int64Counter("existence_checks_total",
		metric.WithDescription("Customer existence checks by decision"),
	)
	if err != nil {
		logger.Error("failed to create existence counter", "error", err)
	}
	return decisionRecorder{policy: policy, checks: checks, logger: logger}
}

func (r decisionRecorder) record(ctx context.Context, customerID int64, d Decision, cause error) {
	if r.checks != nil {
		r.checks.Add(ctx, 1, metric.WithAttributes(
			attribute.String("decision", d.String()),
			attribute.String("policy", r.policy),
		))
	}

	if d == DecisionUnknown {
		r.logger.Warn("customer existence unknown",
			"customer_id", customerID,
			"policy", r.policy,
			"error", cause,
		)
		return
	}
	r.logger.Debug("customer existence checked", "customer_id", customerID, "decision", d.String())
}

// PermissiveChecker fails open: when the customers service cannot be reached the
// customer is assumed to exist, so an outage does not block order creation.
type PermissiveChecker struct {
	oracle   Oracle
	recorder decisionRecorder
}

func NewPermissiveChecker(oracle Oracle, logger *slog.Logger) *PermissiveChecker {
	return &PermissiveChecker{
		oracle:   oracle,
		recorder: newDecisionRecorder("permissive", logger),
	}
}

func (c *PermissiveChecker) Check(ctx context.Context, customerID int64) (Verdict, error) {
	d, err := c.oracle.Lookup(ctx, customerID)
	c.recorder.record(ctx, customerID, d, err)

	return Verdict{Exists: d != DecisionAbsent, Decision: d}, nil
}

// StrictChecker fails closed: an unanswered lookup is reported as ErrUnverifiable.
type StrictChecker struct {
	oracle   Oracle
	recorder decisionRecorder
}

func NewStrictChecker(oracle Oracle, logger *slog.Logger) *StrictChecker {
	return &StrictChecker{
		oracle:   oracle,
		recorder: newDecisionRecorder("strict", logger),
	}
}

func (c *StrictChecker) Check(ctx context.Context, customerID int64) (Verdict, error) {
	d, err := c.oracle.Lookup(ctx, customerID)
	c.recorder.record(ctx, customerID, d, err)

	if d == DecisionUnknown {
		return Verdict{Exists: false, Decision: d}, fmt.Errorf("%w: %v", ErrUnverifiable, err)
	}
	return Verdict{Exists: d == DecisionExists, Decision: d}, nil
}
