package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService handles order business logic
type OrderService struct {
	store     *store.Store
	publisher Publisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, publisher Publisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order. The buyer is always the
// authenticated caller.
type CreateOrderRequest struct {
	VendorID      int64              `json:"vendor_id" binding:"required,min=1"`
	Items         []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string             `json:"payment_method" binding:"required,oneof=UPI credit_card COD wallet BNPL"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
}

// OrderItemRequest represents an item in an order
type OrderItemRequest struct {
	ProductID int64           `json:"product_id" binding:"required,min=1"`
	VariantID *int64          `json:"variant_id,omitempty" binding:"omitempty,min=1"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

// UpdateOrderStatusRequest moves an order to a new status.
type UpdateOrderStatusRequest struct {
	OrderStatus string `json:"order_status" binding:"required,oneof=pending picked out_for_delivery delivered cancelled"`
}

func (r *CreateOrderRequest) validate() error {
	var details apperr.FieldErrors
	if err := mergeValidation(&details, ValidateRequest(r)); err != nil {
		return err
	}
	checkNonNegative(&details, "total_amount", r.TotalAmount)
	for i, item := range r.Items {
		checkNonNegative(&details, fmt.Sprintf("items[%d].price", i), item.Price)
		checkNonNegative(&details, fmt.Sprintf("items[%d].subtotal", i), item.Subtotal)
	}
	return details.Err()
}

// CreateOrder validates the request and persists the order, its items, the inventory
// decrements and the payment in one transaction. Nothing is written when it fails.
func (s *OrderService) CreateOrder(ctx context.Context, userID int64, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := req.validate(); err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	order := &models.Order{
		UserID:      userID,
		VendorID:    req.VendorID,
		Status:      models.OrderStatusPending,
		TotalAmount: req.TotalAmount,
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Subtotal:  item.Subtotal,
		}
	}

	payment := &models.Payment{
		Method: req.PaymentMethod,
		Amount: req.TotalAmount,
		Status: models.PaymentStatusPending,
	}

	start := time.Now()
	err := s.store.CreateOrder(ctx, order, items, payment)
	util.OrderCreateLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInsufficientStock):
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
			s.logger.Info("Order rejected", zap.Int64("user_id", userID), zap.Error(err))
			return nil, apperr.BadRequest("Insufficient stock")
		case errors.Is(err, store.ErrInvalidReference):
			util.OrdersFailedTotal.WithLabelValues("invalid_reference").Inc()
			return nil, apperr.BadRequest("Vendor, product or variant does not exist")
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, util.RecordError(span, internal(fmt.Errorf("failed to create order: %w", err)))
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", userID),
		zap.Int("items", len(items)))

	eventItems := make([]models.OrderItemData, len(items))
	for i, item := range items {
		eventItems[i] = models.OrderItemData{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price.String(),
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent:     broker.NewBaseEvent(models.EventTypeOrderCreated),
		OrderID:       order.ID,
		UserID:        order.UserID,
		VendorID:      order.VendorID,
		TotalAmount:   order.TotalAmount.String(),
		PaymentMethod: payment.Method,
		Items:         eventItems,
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &CreateOrderResponse{
		Message: "Order created successfully",
		OrderID: order.ID,
	}, nil
}

// GetOrders returns every order with its items and payment, newest first.
func (s *OrderService) GetOrders(ctx context.Context) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrders")
	defer span.End()

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}
	return orders, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}
	return order, nil
}

// UpdateOrderStatus moves an order to req.OrderStatus.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, req *UpdateOrderStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrderStatus")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	order, err := s.store.UpdateOrderStatus(ctx, orderID, req.OrderStatus)
	if err != nil {
		return nil, notFoundOr(err, "Order not found")
	}

	util.OrderStatusChangesTotal.WithLabelValues(order.Status).Inc()
	s.logger.Info("Order status updated", zap.Int64("order_id", order.ID), zap.String("status", order.Status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeOrderStatusChanged),
		OrderID:   order.ID,
		Status:    order.Status,
	}
	if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
	return order, nil
}
