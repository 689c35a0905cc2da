package nats

import (
	"context"
	"errors"

	"github.com/dealsense/sales-intel/internal/core/domain"
	"github.com/dealsense/sales-intel/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

// transientConnErrors are broker conditions a reconnecting client recovers
// from on its own; a retried publish is expected to succeed.
var transientConnErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
}

func classifyQueueError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Caller gave up; not the broker's fault.
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	for _, transient := range transientConnErrors {
		if errors.Is(err, transient) {
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

// markTemporary tags broker-side failures as temporary so the upload
// handler can answer 503 instead of 500.
func markTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if class := classifyQueueError(err); class.Retryable || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "publish document event", err)
	}
	return err
}
