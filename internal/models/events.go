package models

import "time"

// Event types
const (
	EventTypeOrderCreated       = "ORDER_CREATED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeUserRegistered     = "USER_REGISTERED"
	EventTypeVendorCreated      = "VENDOR_CREATED"
	EventTypeVendorDeleted      = "VENDOR_DELETED"
	EventTypeProductCreated     = "PRODUCT_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published after the order transaction commits.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	VendorID      int64           `json:"vendor_id"`
	TotalAmount   string          `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItemData `json:"items"`
}

// OrderStatusChangedEvent is published when an order moves to a new status.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// UserRegisteredEvent is published after a successful registration.
type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// VendorCreatedEvent is published when a user is promoted to a vendor.
type VendorCreatedEvent struct {
	BaseEvent
	VendorID int64 `json:"vendor_id"`
	UserID   int64 `json:"user_id"`
}

// VendorDeletedEvent is published when a vendor is removed and its owner demoted.
type VendorDeletedEvent struct {
	BaseEvent
	VendorID int64 `json:"vendor_id"`
	UserID   int64 `json:"user_id"`
}

// ProductCreatedEvent is published when a product and its variants are committed.
type ProductCreatedEvent struct {
	BaseEvent
	ProductID int64 `json:"product_id"`
	VendorID  int64 `json:"vendor_id"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}
