package service

import (
	"context"

	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartService manages the caller's cart and wishlist.
type CartService struct {
	store  *store.Store
	logger *zap.Logger
}

func NewCartService(store *store.Store) *CartService {
	return &CartService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddToCartRequest adds quantity of a product, optionally a specific variant.
type AddToCartRequest struct {
	ProductID int64  `json:"product_id" binding:"required,min=1"`
	VariantID *int64 `json:"variant_id,omitempty" binding:"omitempty,min=1"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest sets a new quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// AddToWishlistRequest saves a product for later.
type AddToWishlistRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
}

// GetCart returns the caller's cart lines and their total.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	lines, err := s.store.GetCartLines(ctx, userID)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.UnitPrice().Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return &models.Cart{Items: lines, Total: total}, nil
}

// AddToCart adds to an existing line for the same product and variant, or starts one.
func (s *CartService) AddToCart(ctx context.Context, userID int64, req *AddToCartRequest) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddToCart")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	}
	if err := s.store.AddToCart(ctx, item); err != nil {
		return nil, referenceOr(err, "Product or variant does not exist")
	}

	util.CartMutationsTotal.WithLabelValues("cart_add").Inc()
	return item, nil
}

// UpdateCartItem changes the quantity of one of the caller's lines.
func (s *CartService) UpdateCartItem(ctx context.Context, userID, cartID int64, req *UpdateCartItemRequest) (*models.CartItem, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateCartItem")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	item, err := s.store.UpdateCartItem(ctx, userID, cartID, req.Quantity)
	if err != nil {
		return nil, notFoundOr(err, "Cart item not found")
	}

	util.CartMutationsTotal.WithLabelValues("cart_update").Inc()
	return item, nil
}

// RemoveFromCart deletes one of the caller's lines.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, cartID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveFromCart")
	defer span.End()

	if err := s.store.RemoveFromCart(ctx, userID, cartID); err != nil {
		return notFoundOr(err, "Cart item not found")
	}

	util.CartMutationsTotal.WithLabelValues("cart_remove").Inc()
	return nil
}

// ClearCart empties the caller's cart.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := s.store.ClearCart(ctx, userID); err != nil {
		return util.RecordError(span, internal(err))
	}

	util.CartMutationsTotal.WithLabelValues("cart_clear").Inc()
	return nil
}
