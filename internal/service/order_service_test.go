package service

import (
	"context"
	"testing"
	"time"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleItemOrder() *CreateOrderRequest {
	return &CreateOrderRequest{
		VendorID: 1,
		Items: []OrderItemRequest{
			{ProductID: 7, Quantity: 1, Price: decimal.NewFromInt(20), Subtotal: decimal.NewFromInt(20)},
		},
		PaymentMethod: models.PaymentMethodCOD,
		TotalAmount:   decimal.NewFromInt(20),
	}
}

func TestCreateOrderThenGetOrders(t *testing.T) {
	st, mock := newMockStore(t)
	pub := &recordingPublisher{}
	svc := NewOrderService(st, pub)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WithArgs(int64(3), int64(1), models.OrderStatusPending, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at", "updated_at"}).AddRow(1, now, now))
	mock.ExpectQuery(q("INSERT INTO order_items")).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectQuery(q("INSERT INTO payments")).
		WithArgs(int64(1), models.PaymentMethodCOD, sqlmock.AnyArg(), models.PaymentStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "created_at"}).AddRow(1, now))
	mock.ExpectCommit()

	resp, err := svc.CreateOrder(context.Background(), 3, singleItemOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.OrderID)
	assert.Equal(t, "Order created successfully", resp.Message)

	require.Len(t, pub.events, 1)
	created := pub.events[0].(*models.OrderCreatedEvent)
	assert.Equal(t, models.EventTypeOrderCreated, created.EventType)
	assert.Equal(t, int64(3), created.UserID)
	assert.Equal(t, "20", created.TotalAmount)

	mock.ExpectQuery(q("FROM orders ORDER BY")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id", "vendor_id", "order_status", "total_amount", "created_at", "updated_at"}).
			AddRow(1, 3, 1, "pending", "20.00", now, now))
	mock.ExpectQuery(q("FROM order_items")).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id", "order_id", "product_id", "variant_id", "quantity", "price", "subtotal"}).
			AddRow(1, 1, 7, nil, 1, "20.00", "20.00"))
	mock.ExpectQuery(q("FROM payments")).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "order_id", "payment_method", "amount", "payment_status", "created_at"}).
			AddRow(1, 1, "COD", "20.00", "pending", now))

	orders, err := svc.GetOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Len(t, orders[0].Items, 1)
	require.NotNil(t, orders[0].Payment)
	assert.Equal(t, models.PaymentStatusPending, orders[0].Payment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderValidationTouchesNoTables(t *testing.T) {
	st, mock := newMockStore(t)
	svc := NewOrderService(st, &recordingPublisher{})

	tests := []struct {
		name   string
		mutate func(r *CreateOrderRequest)
		field  string
	}{
		{"no items", func(r *CreateOrderRequest) { r.Items = []OrderItemRequest{} }, "items"},
		{"bad payment method", func(r *CreateOrderRequest) { r.PaymentMethod = "cheque" }, "payment_method"},
		{"zero quantity", func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative price", func(r *CreateOrderRequest) { r.Items[0].Price = decimal.NewFromInt(-1) }, "items[0].price"},
		{"bad variant", func(r *CreateOrderRequest) { v := int64(0); r.Items[0].VariantID = &v }, "items[0].variant_id"},
		{"negative total", func(r *CreateOrderRequest) { r.TotalAmount = decimal.NewFromInt(-5) }, "total_amount"},
		{"missing vendor", func(r *CreateOrderRequest) { r.VendorID = 0 }, "vendor_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := singleItemOrder()
			tt.mutate(req)

			_, err := svc.CreateOrder(context.Background(), 3, req)
			ae := assertKind(t, apperr.KindValidation, err)

			fields := make([]string, len(ae.Details))
			for i, d := range ae.Details {
				fields[i] = d.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	st, mock := newMockStore(t)
	pub := &recordingPublisher{}
	svc := NewOrderService(st, pub)
	now := time.Now()

	req := singleItemOrder()
	variant := int64(5)
	req.Items[0].VariantID = &variant
	req.Items[0].Quantity = 10

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at", "updated_at"}).AddRow(1, now, now))
	mock.ExpectQuery(q("INSERT INTO order_items")).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectExec(q("UPDATE product_variants")).
		WithArgs(10, int64(5), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), 3, req)
	ae := assertKind(t, apperr.KindBadRequest, err)
	assert.Equal(t, "Insufficient stock", ae.Message)
	assert.Empty(t, pub.events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderPublishFailureDoesNotFailRequest(t *testing.T) {
	st, mock := newMockStore(t)
	pub := &recordingPublisher{err: assert.AnError}
	svc := NewOrderService(st, pub)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at", "updated_at"}).AddRow(8, now, now))
	mock.ExpectQuery(q("INSERT INTO order_items")).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(1))
	mock.ExpectQuery(q("INSERT INTO payments")).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "created_at"}).AddRow(1, now))
	mock.ExpectCommit()

	resp, err := svc.CreateOrder(context.Background(), 3, singleItemOrder())
	require.NoError(t, err)
	assert.Equal(t, int64(8), resp.OrderID)
}

func TestCreateOrderUnclassifiedFailureIsInternal(t *testing.T) {
	st, mock := newMockStore(t)
	svc := NewOrderService(st, &recordingPublisher{})

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), 3, singleItemOrder())
	assertKind(t, apperr.KindInternal, err)
}

func TestGetOrderNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	svc := NewOrderService(st, &recordingPublisher{})

	mock.ExpectQuery(q("FROM orders WHERE order_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	_, err := svc.GetOrder(context.Background(), 99)
	assertKind(t, apperr.KindNotFound, err)
}

func TestUpdateOrderStatus(t *testing.T) {
	st, mock := newMockStore(t)
	pub := &recordingPublisher{}
	svc := NewOrderService(st, pub)
	now := time.Now()

	_, err := svc.UpdateOrderStatus(context.Background(), 1, &UpdateOrderStatusRequest{OrderStatus: "lost"})
	assertKind(t, apperr.KindValidation, err)

	mock.ExpectQuery(q("UPDATE orders SET order_status")).
		WithArgs(models.OrderStatusDelivered, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id", "vendor_id", "order_status", "total_amount", "created_at", "updated_at"}).
			AddRow(1, 3, 1, "delivered", "20.00", now, now))

	order, err := svc.UpdateOrderStatus(context.Background(), 1, &UpdateOrderStatusRequest{OrderStatus: models.OrderStatusDelivered})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)

	require.Len(t, pub.events, 1)
	changed := pub.events[0].(*models.OrderStatusChangedEvent)
	assert.Equal(t, models.OrderStatusDelivered, changed.Status)
}
