package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"
)

// GetWishlist returns the user's wishlist, newest first.
func (s *Store) GetWishlist(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	entries := []models.WishlistEntry{}
	query := `
		SELECT w.wishlist_id, p.product_id, p.product_name, p.base_price,
			img.image_url, v.store_name AS vendor_name
		FROM wishlist w
		JOIN products p ON p.product_id = w.product_id
		JOIN vendors v ON v.vendor_id = p.vendor_id
		LEFT JOIN LATERAL (
			SELECT pi.image_url FROM product_images pi
			WHERE pi.product_id = p.product_id AND pi.is_primary
			ORDER BY pi.image_id LIMIT 1
		) img ON TRUE
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, w.wishlist_id DESC`
	if err := s.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("get wishlist of user %d: %w", userID, err)
	}
	return entries, nil
}

// AddToWishlist inserts a (user, product) pair. A pair that already exists yields ErrDuplicate.
func (s *Store) AddToWishlist(ctx context.Context, item *models.WishlistItem) error {
	var exists bool
	if err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM wishlist WHERE user_id = $1 AND product_id = $2)",
		item.UserID, item.ProductID); err != nil {
		return fmt.Errorf("check wishlist: %w", err)
	}
	if exists {
		return fmt.Errorf("product %d: %w", item.ProductID, ErrDuplicate)
	}

	if err := s.db.GetContext(ctx, item, `
		INSERT INTO wishlist (user_id, product_id)
		VALUES ($1, $2)
		RETURNING wishlist_id, user_id, product_id, created_at`,
		item.UserID, item.ProductID); err != nil {
		return fmt.Errorf("insert wishlist item: %w", translate(err))
	}
	return nil
}

// RemoveFromWishlist deletes one of the user's wishlist rows.
func (s *Store) RemoveFromWishlist(ctx context.Context, userID, wishlistID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM wishlist WHERE wishlist_id = $1 AND user_id = $2", wishlistID, userID)
	if err != nil {
		return fmt.Errorf("remove wishlist item %d: %w", wishlistID, err)
	}
	return expectRow(res, fmt.Sprintf("remove wishlist item %d", wishlistID))
}
