package lambda

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-api-accounts/internal/domain"
)

type messageHandler interface {
	Handle(ctx context.Context, payload []byte) error
}

// NewSNSHandler adapts h to an SNS-triggered Lambda. Every record is handled.
// Malformed messages are logged and acknowledged; any other failure is
// returned so the invocation is retried.
func NewSNSHandler(h messageHandler) func(ctx context.Context, ev events.SNSEvent) error {
	return func(ctx context.Context, ev events.SNSEvent) error {
		var errs []error
		for _, rec := range ev.Records {
			err := h.Handle(ctx, []byte(rec.SNS.Message))
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrMalformedInput):
				slog.Warn("dropping malformed verification request", "message_id", rec.SNS.MessageID, "err", err)
			default:
				slog.Error("verification email not delivered", "message_id", rec.SNS.MessageID, "err", err)
				errs = append(errs, fmt.Errorf("message %s: %w", rec.SNS.MessageID, err))
			}
		}
		return errors.Join(errs...)
	}
}

// WithFlush runs flush after every invocation so buffered error reports leave
// before the execution environment is frozen.
func WithFlush(next func(context.Context, events.SNSEvent) error, flush func(time.Duration) bool, timeout time.Duration) func(context.Context, events.SNSEvent) error {
	return func(ctx context.Context, ev events.SNSEvent) error {
		defer func() {
			if !flush(timeout) {
				slog.Warn("error reports not flushed before timeout", "timeout", timeout)
			}
		}()
		return next(ctx, ev)
	}
}
