package worker

import (
	"context"
	"encoding/json"
	"testing"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) InvalidateStats(context.Context) error {
	c.calls++
	return c.err
}

// replaySource hands a fixed list of messages to the handler, then waits for ctx.
type replaySource struct {
	messages []kafka.Message
	errs     []error
	closed   bool
}

func (s *replaySource) StartConsuming(ctx context.Context, handler broker.MessageHandler) error {
	for _, msg := range s.messages {
		s.errs = append(s.errs, handler(ctx, msg))
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *replaySource) Close() error {
	s.closed = true
	return nil
}

func message(t *testing.T, event interface{}) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func TestStatsWorkerInvalidatesOnAggregateEvents(t *testing.T) {
	stats := &countingInvalidator{}
	source := &replaySource{messages: []kafka.Message{
		message(t, &models.OrderCreatedEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeOrderCreated), OrderID: 1}),
		message(t, &models.OrderStatusChangedEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeOrderStatusChanged), OrderID: 1, Status: "delivered"}),
		message(t, &models.UserRegisteredEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeUserRegistered), UserID: 2}),
		message(t, &models.VendorCreatedEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeVendorCreated), VendorID: 3}),
		message(t, &models.VendorDeletedEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeVendorDeleted), VendorID: 3}),
		message(t, &models.ProductCreatedEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeProductCreated), ProductID: 4}),
	}}

	w := NewStatsWorker(source, stats)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 5, stats.calls)
	for _, err := range source.errs {
		assert.NoError(t, err)
	}

	require.NoError(t, w.Stop())
	assert.True(t, source.closed)
}

func TestStatsWorkerHandlerErrors(t *testing.T) {
	stats := &countingInvalidator{err: assert.AnError}
	w := NewStatsWorker(&replaySource{}, stats)
	handle := w.Handler()

	err := handle(context.Background(), message(t, &models.VendorCreatedEvent{BaseEvent: broker.NewBaseEvent(models.EventTypeVendorCreated)}))
	assert.ErrorIs(t, err, assert.AnError)

	err = handle(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
	assert.Equal(t, 1, stats.calls)
}
