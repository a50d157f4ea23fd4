package lambda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-api-accounts/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHandler struct{ mock.Mock }

func (m *mockHandler) Handle(ctx context.Context, payload []byte) error {
	return m.Called(ctx, string(payload)).Error(0)
}

func event(msgs ...string) events.SNSEvent {
	var ev events.SNSEvent
	for i, m := range msgs {
		ev.Records = append(ev.Records, events.SNSEventRecord{
			SNS: events.SNSEntity{MessageID: string(rune('a' + i)), Message: m},
		})
	}
	return ev
}

func TestSNSHandler_AllDelivered(t *testing.T) {
	h := &mockHandler{}
	h.On("Handle", mock.Anything, mock.Anything).Return(nil)

	err := NewSNSHandler(h)(context.Background(), event(`{"email":"a@example.com"}`, `{"email":"b@example.com"}`))

	require.NoError(t, err)
	h.AssertNumberOfCalls(t, "Handle", 2)
}

func TestSNSHandler_MalformedIsAcknowledged(t *testing.T) {
	h := &mockHandler{}
	h.On("Handle", mock.Anything, "garbage").Return(domain.ErrMalformedInput)
	h.On("Handle", mock.Anything, `{"email":"b@example.com"}`).Return(nil)

	err := NewSNSHandler(h)(context.Background(), event("garbage", `{"email":"b@example.com"}`))

	assert.NoError(t, err)
	h.AssertNumberOfCalls(t, "Handle", 2)
}

func TestSNSHandler_FailuresAreJoined(t *testing.T) {
	h := &mockHandler{}
	h.On("Handle", mock.Anything, "1").Return(domain.ErrMailProvider)
	h.On("Handle", mock.Anything, "2").Return(nil)
	h.On("Handle", mock.Anything, "3").Return(errors.New("boom"))

	err := NewSNSHandler(h)(context.Background(), event("1", "2", "3"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMailProvider))
	assert.ErrorContains(t, err, "boom")
	h.AssertNumberOfCalls(t, "Handle", 3)
}

func TestWithFlush_FlushesAfterEveryInvocation(t *testing.T) {
	var flushed []time.Duration
	var order []string
	flush := func(d time.Duration) bool {
		order = append(order, "flush")
		flushed = append(flushed, d)
		return true
	}
	next := func(context.Context, events.SNSEvent) error {
		order = append(order, "handle")
		return domain.ErrMailProvider
	}

	err := WithFlush(next, flush, 2*time.Second)(context.Background(), event("1"))

	assert.True(t, errors.Is(err, domain.ErrMailProvider))
	assert.Equal(t, []string{"handle", "flush"}, order)
	assert.Equal(t, []time.Duration{2 * time.Second}, flushed)
}
