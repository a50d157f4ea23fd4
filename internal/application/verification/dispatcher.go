package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-api-accounts/internal/domain"
)

type publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// Dispatcher hands verification requests to the delivery channel. It only
// enqueues; sending the mail is the consumer's job.
type Dispatcher struct {
	pub     publisher
	timeout time.Duration
}

func NewDispatcher(pub publisher, timeout time.Duration) *Dispatcher {
	return &Dispatcher{pub: pub, timeout: timeout}
}

// Enqueue publishes a request to verify email.
func (d *Dispatcher) Enqueue(ctx context.Context, email string) error {
	body, err := json.Marshal(domain.VerificationMessage{Email: email})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEnqueueFailed, err)
	}
	ctx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.pub.Publish(ctx, body); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEnqueueFailed, err)
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
