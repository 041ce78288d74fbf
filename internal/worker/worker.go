package worker

import (
	"context"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// MessageSource feeds event messages to a handler until its context ends.
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// StatsInvalidator drops cached dashboard aggregates.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context) error
}

// StatsWorker consumes marketplace events and invalidates the cached dashboard stats
// whenever an event changes one of the aggregates.
type StatsWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	stats        StatsInvalidator
	logger       *zap.Logger
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(consumer MessageSource, stats StatsInvalidator) *StatsWorker {
	w := &StatsWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		stats:        stats,
		logger:       util.Named("stats-worker"),
	}

	w.eventHandler.OnOrderCreated(func(ctx context.Context, e *models.OrderCreatedEvent) error {
		return w.invalidate(ctx, e.EventType, zap.Int64("order_id", e.OrderID))
	})
	w.eventHandler.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		return w.invalidate(ctx, e.EventType, zap.Int64("order_id", e.OrderID), zap.String("status", e.Status))
	})
	for _, eventType := range []string{
		models.EventTypeUserRegistered,
		models.EventTypeVendorCreated,
		models.EventTypeVendorDeleted,
	} {
		eventType := eventType
		w.eventHandler.On(eventType, func(ctx context.Context, _ []byte) error {
			return w.invalidate(ctx, eventType)
		})
	}

	return w
}

func (w *StatsWorker) invalidate(ctx context.Context, eventType string, fields ...zap.Field) error {
	if err := w.stats.InvalidateStats(ctx); err != nil {
		return err
	}
	w.logger.Debug("Dashboard stats invalidated", append(fields, zap.String("event", eventType))...)
	return nil
}

// Handler returns the message handler the worker consumes with.
func (w *StatsWorker) Handler() broker.MessageHandler {
	return w.eventHandler.HandleMessage
}

// Start consumes until ctx is cancelled
func (w *StatsWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stats worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *StatsWorker) Stop() error {
	w.logger.Info("Stopping stats worker")
	return w.consumer.Close()
}
