package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const cartColumns = `cart_id, user_id, product_id, variant_id, quantity, created_at`

// GetCartLines returns the user's cart rows joined with product, variant and primary image.
func (s *Store) GetCartLines(ctx context.Context, userID int64) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	query := `
		SELECT c.cart_id, c.quantity, p.product_id, p.product_name, p.base_price,
			pv.variant_id, pv.variant_name, pv.variant_price, img.image_url
		FROM cart c
		JOIN products p ON p.product_id = c.product_id
		LEFT JOIN product_variants pv ON pv.variant_id = c.variant_id
		LEFT JOIN LATERAL (
			SELECT pi.image_url FROM product_images pi
			WHERE pi.product_id = p.product_id AND pi.is_primary
			ORDER BY pi.image_id LIMIT 1
		) img ON TRUE
		WHERE c.user_id = $1
		ORDER BY c.cart_id`
	if err := s.db.SelectContext(ctx, &lines, query, userID); err != nil {
		return nil, fmt.Errorf("get cart of user %d: %w", userID, err)
	}
	return lines, nil
}

// AddToCart adds quantity of (product, variant) to the user's cart. An existing row with
// the same product and variant, where a missing variant matches a missing variant, has
// its quantity incremented instead of a second row being inserted.
func (s *Store) AddToCart(ctx context.Context, item *models.CartItem) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var existing models.CartItem
		err := tx.GetContext(ctx, &existing, `
			SELECT `+cartColumns+` FROM cart
			WHERE user_id = $1 AND product_id = $2 AND variant_id IS NOT DISTINCT FROM $3
			FOR UPDATE`,
			item.UserID, item.ProductID, item.VariantID)

		switch err = translate(err); {
		case err == nil:
			if err := tx.GetContext(ctx, item, `
				UPDATE cart SET quantity = quantity + $1
				WHERE cart_id = $2
				RETURNING `+cartColumns,
				item.Quantity, existing.ID); err != nil {
				return fmt.Errorf("increment cart item %d: %w", existing.ID, translate(err))
			}
			return nil
		case isNotFound(err):
			if err := tx.GetContext(ctx, item, `
				INSERT INTO cart (user_id, product_id, variant_id, quantity)
				VALUES ($1, $2, $3, $4)
				RETURNING `+cartColumns,
				item.UserID, item.ProductID, item.VariantID, item.Quantity); err != nil {
				return fmt.Errorf("insert cart item: %w", translate(err))
			}
			return nil
		default:
			return fmt.Errorf("find cart item: %w", err)
		}
	})
}

// UpdateCartItem sets the quantity of one of the user's cart rows.
func (s *Store) UpdateCartItem(ctx context.Context, userID, cartID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.GetContext(ctx, &item, `
		UPDATE cart SET quantity = $1
		WHERE cart_id = $2 AND user_id = $3
		RETURNING `+cartColumns,
		quantity, cartID, userID)
	if err != nil {
		return nil, fmt.Errorf("update cart item %d: %w", cartID, translate(err))
	}
	return &item, nil
}

// RemoveFromCart deletes one of the user's cart rows.
func (s *Store) RemoveFromCart(ctx context.Context, userID, cartID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM cart WHERE cart_id = $1 AND user_id = $2", cartID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item %d: %w", cartID, err)
	}
	return expectRow(res, fmt.Sprintf("remove cart item %d", cartID))
}

// ClearCart deletes every cart row of the user.
func (s *Store) ClearCart(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cart WHERE user_id = $1", userID); err != nil {
		return fmt.Errorf("clear cart of user %d: %w", userID, err)
	}
	return nil
}
