package notification

import (
	"context"

	"fleet-reserve/internal/logger"
	"fleet-reserve/pkg/retry"

	"go.uber.org/zap"
)

// RetryingSender wraps a Sender with the service's own bounded backoff,
// independent of any retry the underlying transport performs.
type RetryingSender struct {
	inner  Sender
	policy retry.Policy
}

func NewRetryingSender(inner Sender, policy retry.Policy) *RetryingSender {
	return &RetryingSender{inner: inner, policy: policy}
}

func (s *RetryingSender) Send(ctx context.Context, msg Message) error {
	err := s.policy.Do(ctx, func() error {
		return s.inner.Send(ctx, msg)
	})
	if err != nil {
		logger.Error("Notification send failed after retries",
			zap.String("recipient", msg.Recipient),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
	return err
}
