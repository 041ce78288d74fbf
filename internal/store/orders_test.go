package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-service/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func newOrderFixture() (*models.Order, []models.OrderItem, *models.Payment) {
	order := &models.Order{
		UserID:      3,
		VendorID:    1,
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(50),
	}
	items := []models.OrderItem{
		{ProductID: 7, VariantID: int64Ptr(5), Quantity: 2, Price: decimal.NewFromInt(15), Subtotal: decimal.NewFromInt(30)},
		{ProductID: 8, Quantity: 1, Price: decimal.NewFromInt(20), Subtotal: decimal.NewFromInt(20)},
	}
	payment := &models.Payment{
		Method: models.PaymentMethodCOD,
		Amount: order.TotalAmount,
		Status: models.PaymentStatusPending,
	}
	return order, items, payment
}

func expectOrderInsert(mock sqlmock.Sqlmock, orderID int64) {
	now := time.Now()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WithArgs(int64(3), int64(1), models.OrderStatusPending, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "created_at", "updated_at"}).AddRow(orderID, now, now))
}

func expectItemInsert(mock sqlmock.Sqlmock, itemID int64) {
	mock.ExpectQuery(q("INSERT INTO order_items")).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(itemID))
}

func TestCreateOrderCommitsEveryStep(t *testing.T) {
	s, mock := newMockStore(t)
	order, items, payment := newOrderFixture()

	mock.ExpectBegin()
	expectOrderInsert(mock, 42)
	mock.ExpectQuery(q("INSERT INTO order_items")).
		WithArgs(int64(42), int64(7), int64(5), 2, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id"}).AddRow(100))
	mock.ExpectExec(q("UPDATE product_variants")).
		WithArgs(2, int64(5), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// the second item has no variant, so no decrement follows it
	expectItemInsert(mock, 101)
	mock.ExpectQuery(q("INSERT INTO payments")).
		WithArgs(int64(42), models.PaymentMethodCOD, sqlmock.AnyArg(), models.PaymentStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "created_at"}).AddRow(9, time.Now()))
	mock.ExpectCommit()

	err := s.CreateOrder(context.Background(), order, items, payment)
	require.NoError(t, err)

	assert.Equal(t, int64(42), order.ID)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(100), order.Items[0].ID)
	assert.Equal(t, int64(101), order.Items[1].ID)
	assert.Equal(t, int64(42), order.Items[1].OrderID)
	require.NotNil(t, order.Payment)
	assert.Equal(t, int64(9), order.Payment.ID)
	assert.Equal(t, int64(42), order.Payment.OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnInsufficientStock(t *testing.T) {
	s, mock := newMockStore(t)
	order, items, payment := newOrderFixture()

	mock.ExpectBegin()
	expectOrderInsert(mock, 42)
	expectItemInsert(mock, 100)
	mock.ExpectExec(q("UPDATE product_variants")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.CreateOrder(context.Background(), order, items, payment)

	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order.Payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnPaymentFailure(t *testing.T) {
	s, mock := newMockStore(t)
	order, items, payment := newOrderFixture()

	mock.ExpectBegin()
	expectOrderInsert(mock, 42)
	expectItemInsert(mock, 100)
	mock.ExpectExec(q("UPDATE product_variants")).WillReturnResult(sqlmock.NewResult(0, 1))
	expectItemInsert(mock, 101)
	mock.ExpectQuery(q("INSERT INTO payments")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.CreateOrder(context.Background(), order, items, payment)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert payment")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnItemFailure(t *testing.T) {
	s, mock := newMockStore(t)
	order, items, payment := newOrderFixture()

	mock.ExpectBegin()
	expectOrderInsert(mock, 42)
	mock.ExpectQuery(q("INSERT INTO order_items")).
		WillReturnError(&pq.Error{Code: pqForeignKeyViolation, Constraint: "order_items_product_id_fkey"})
	mock.ExpectRollback()

	err := s.CreateOrder(context.Background(), order, items, payment)

	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackOnOrderInsertFailure(t *testing.T) {
	s, mock := newMockStore(t)
	order, items, payment := newOrderFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	err := s.CreateOrder(context.Background(), order, items, payment)

	assert.Error(t, err)
	assert.Zero(t, order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersAttachesItemsAndPayments(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(q("FROM orders ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id", "vendor_id", "order_status", "total_amount", "created_at", "updated_at"}).
			AddRow(2, 3, 1, "pending", "20.00", now, now).
			AddRow(1, 3, 1, "delivered", "35.50", now.Add(-time.Hour), now))
	mock.ExpectQuery(q("FROM order_items WHERE order_id IN")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"order_item_id", "order_id", "product_id", "variant_id", "quantity", "price", "subtotal"}).
			AddRow(10, 1, 7, 5, 1, "35.50", "35.50").
			AddRow(11, 2, 8, nil, 1, "20.00", "20.00"))
	mock.ExpectQuery(q("FROM payments WHERE order_id IN")).
		WithArgs(int64(2), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "order_id", "payment_method", "amount", "payment_status", "created_at"}).
			AddRow(5, 2, "COD", "20.00", "pending", now))

	orders, err := s.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, int64(2), orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Nil(t, orders[0].Items[0].VariantID)
	require.NotNil(t, orders[0].Payment)
	assert.Equal(t, "pending", orders[0].Payment.Status)
	assert.True(t, decimal.NewFromInt(20).Equal(orders[0].Payment.Amount))

	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, int64(5), *orders[1].Items[0].VariantID)
	assert.Nil(t, orders[1].Payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(q("FROM orders")).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	orders, err := s.ListOrders(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(q("FROM orders WHERE order_id = $1")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id"}))

	_, err := s.GetOrderByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(q("UPDATE orders SET order_status = $1")).
		WithArgs("picked", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "user_id", "vendor_id", "order_status", "total_amount", "created_at", "updated_at"}).
			AddRow(2, 3, 1, "picked", "20.00", now, now))

	order, err := s.UpdateOrderStatus(context.Background(), 2, "picked")
	require.NoError(t, err)
	assert.Equal(t, "picked", order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
