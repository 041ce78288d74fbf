package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events. A publisher without a producer
// drops every event, which is how the service runs with Kafka disabled.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer, logger: util.Named("events")}
}

// NewBaseEvent stamps a fresh event id and the current time.
func NewBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (ep *EventPublisher) publish(ctx context.Context, key string, eventType string, event interface{}) error {
	if ep.producer == nil {
		util.EventsPublishedTotal.WithLabelValues(eventType, "skipped").Inc()
		return nil
	}

	if err := ep.producer.PublishEvent(ctx, key, event); err != nil {
		util.EventsPublishedTotal.WithLabelValues(eventType, "error").Inc()
		return err
	}

	util.EventsPublishedTotal.WithLabelValues(eventType, "ok").Inc()
	return nil
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.publish(ctx, key, event.EventType, event)
}

// PublishOrderStatusChanged publishes OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.publish(ctx, key, event.EventType, event)
}

// PublishUserRegistered publishes UserRegistered event
func (ep *EventPublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	key := fmt.Sprintf("user-%d", event.UserID)
	return ep.publish(ctx, key, event.EventType, event)
}

// PublishVendorCreated publishes VendorCreated event
func (ep *EventPublisher) PublishVendorCreated(ctx context.Context, event *models.VendorCreatedEvent) error {
	key := fmt.Sprintf("vendor-%d", event.VendorID)
	return ep.publish(ctx, key, event.EventType, event)
}

// PublishVendorDeleted publishes VendorDeleted event
func (ep *EventPublisher) PublishVendorDeleted(ctx context.Context, event *models.VendorDeletedEvent) error {
	key := fmt.Sprintf("vendor-%d", event.VendorID)
	return ep.publish(ctx, key, event.EventType, event)
}

// PublishProductCreated publishes ProductCreated event
func (ep *EventPublisher) PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	key := fmt.Sprintf("product-%d", event.ProductID)
	return ep.publish(ctx, key, event.EventType, event)
}

// EventHandler routes incoming events by type.
type EventHandler struct {
	handlers map[string]func(context.Context, []byte) error
	logger   *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{
		handlers: make(map[string]func(context.Context, []byte) error),
		logger:   util.Named("events"),
	}
}

// On registers a handler receiving the raw payload of every event of eventType.
func (eh *EventHandler) On(eventType string, handler func(context.Context, []byte) error) {
	eh.handlers[eventType] = handler
}

// OnOrderCreated registers a handler for OrderCreated events
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.On(models.EventTypeOrderCreated, func(ctx context.Context, raw []byte) error {
		var event models.OrderCreatedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return fmt.Errorf("failed to unmarshal OrderCreated event: %w", err)
		}
		return handler(ctx, &event)
	})
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.On(models.EventTypeOrderStatusChanged, func(ctx context.Context, raw []byte) error {
		var event models.OrderStatusChangedEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
		}
		return handler(ctx, &event)
	})
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	handler, ok := eh.handlers[baseEvent.EventType]
	if !ok {
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
		return nil
	}
	return handler(ctx, msg.Value)
}
