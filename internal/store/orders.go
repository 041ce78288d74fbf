package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const orderColumns = `order_id, user_id, vendor_id, order_status, total_amount, created_at, updated_at`

const orderItemColumns = `order_item_id, order_id, product_id, variant_id, quantity, price, subtotal`

const paymentColumns = `payment_id, order_id, payment_method, amount, payment_status, created_at`

// CreateOrder persists an order, its items, the matching inventory decrements and its
// payment as one unit of work. On success order.ID, every items[i].ID and payment.ID are
// set and order.Items/order.Payment reference them; on failure nothing is persisted.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem, payment *models.Payment) error {
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := insertOrderItem(ctx, tx, &items[i]); err != nil {
				return err
			}
			if items[i].VariantID == nil {
				continue
			}
			if err := decrementStock(ctx, tx, items[i].ProductID, *items[i].VariantID, items[i].Quantity); err != nil {
				return err
			}
		}

		payment.OrderID = order.ID
		return insertPayment(ctx, tx, payment)
	})
	if err != nil {
		return err
	}

	order.Items = items
	order.Payment = payment
	return nil
}

func insertOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, vendor_id, order_status, total_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING order_id, created_at, updated_at`

	if err := tx.GetContext(ctx, order, query,
		order.UserID, order.VendorID, order.Status, order.TotalAmount); err != nil {
		return fmt.Errorf("insert order: %w", translate(err))
	}
	return nil
}

func insertOrderItem(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, variant_id, quantity, price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING order_item_id`

	if err := tx.GetContext(ctx, &item.ID, query,
		item.OrderID, item.ProductID, item.VariantID, item.Quantity, item.Price, item.Subtotal); err != nil {
		return fmt.Errorf("insert order item for product %d: %w", item.ProductID, translate(err))
	}
	return nil
}

// decrementStock takes quantity units off one variant. The guard on stock_quantity makes
// the UPDATE a no-op when stock is short, and the row lock it takes serializes concurrent
// orders for the same variant.
func decrementStock(ctx context.Context, tx *sqlx.Tx, productID, variantID int64, quantity int) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $1
		WHERE variant_id = $2 AND product_id = $3 AND stock_quantity >= $1`,
		quantity, variantID, productID)
	if err != nil {
		return fmt.Errorf("decrement stock for variant %d: %w", variantID, translate(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock for variant %d: %w", variantID, err)
	}
	if n == 0 {
		return fmt.Errorf("variant %d of product %d: %w", variantID, productID, ErrInsufficientStock)
	}
	return nil
}

func insertPayment(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	query := `
		INSERT INTO payments (order_id, payment_method, amount, payment_status)
		VALUES ($1, $2, $3, $4)
		RETURNING payment_id, created_at`

	if err := tx.GetContext(ctx, payment, query,
		payment.OrderID, payment.Method, payment.Amount, payment.Status); err != nil {
		return fmt.Errorf("insert payment: %w", translate(err))
	}
	return nil
}

// ListOrders returns every order, newest first, with items and payment attached.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at DESC, order_id DESC")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	if err := s.attachOrderDetails(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT "+orderColumns+" FROM orders WHERE order_id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, translate(err))
	}

	orders := []models.Order{order}
	if err := s.attachOrderDetails(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// UpdateOrderStatus updates order status
func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, `
		UPDATE orders SET order_status = $1, updated_at = NOW()
		WHERE order_id = $2
		RETURNING `+orderColumns,
		status, id)
	if err != nil {
		return nil, fmt.Errorf("update order %d status: %w", id, translate(err))
	}
	return &order, nil
}

func (s *Store) attachOrderDetails(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		orders[i].Items = []models.OrderItem{}
	}

	var items []models.OrderItem
	if err := s.selectIn(ctx, &items,
		"SELECT "+orderItemColumns+" FROM order_items WHERE order_id IN (?) ORDER BY order_item_id", ids); err != nil {
		return fmt.Errorf("list order items: %w", err)
	}

	var payments []models.Payment
	if err := s.selectIn(ctx, &payments,
		"SELECT "+paymentColumns+" FROM payments WHERE order_id IN (?) ORDER BY payment_id", ids); err != nil {
		return fmt.Errorf("list payments: %w", err)
	}

	index := make(map[int64]int, len(orders))
	for i := range orders {
		index[orders[i].ID] = i
	}
	for _, item := range items {
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	for j := range payments {
		if i, ok := index[payments[j].OrderID]; ok && orders[i].Payment == nil {
			orders[i].Payment = &payments[j]
		}
	}
	return nil
}

// selectIn runs a query with a single "IN (?)" placeholder bound to ids.
func (s *Store) selectIn(ctx context.Context, dest interface{}, query string, ids []int64) error {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...)
}
