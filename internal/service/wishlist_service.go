package service

import (
	"context"
	"errors"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"
)

// GetWishlist returns the caller's saved products, newest first.
func (s *CartService) GetWishlist(ctx context.Context, userID int64) ([]models.WishlistEntry, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetWishlist")
	defer span.End()

	entries, err := s.store.GetWishlist(ctx, userID)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}
	return entries, nil
}

// AddToWishlist saves a product once per user.
func (s *CartService) AddToWishlist(ctx context.Context, userID int64, req *AddToWishlistRequest) (*models.WishlistItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToWishlist")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	item := &models.WishlistItem{UserID: userID, ProductID: req.ProductID}
	if err := s.store.AddToWishlist(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Product already in wishlist")
		}
		return nil, referenceOr(err, "Product does not exist")
	}

	util.CartMutationsTotal.WithLabelValues("wishlist_add").Inc()
	return item, nil
}

// RemoveFromWishlist deletes one of the caller's wishlist rows.
func (s *CartService) RemoveFromWishlist(ctx context.Context, userID, wishlistID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveFromWishlist")
	defer span.End()

	if err := s.store.RemoveFromWishlist(ctx, userID, wishlistID); err != nil {
		return notFoundOr(err, "Wishlist item not found")
	}

	util.CartMutationsTotal.WithLabelValues("wishlist_remove").Inc()
	return nil
}
