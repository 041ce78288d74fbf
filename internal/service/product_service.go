package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService manages the catalog.
type ProductService struct {
	store     *store.Store
	publisher Publisher
	logger    *zap.Logger
}

func NewProductService(store *store.Store, publisher Publisher) *ProductService {
	return &ProductService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CreateProductRequest is a product with its variants and images.
type CreateProductRequest struct {
	VendorID    int64            `json:"vendor_id" binding:"required,min=1"`
	CategoryID  int64            `json:"category_id" binding:"required,min=1"`
	ProductName string           `json:"product_name" binding:"required,max=255"`
	Description string           `json:"description" binding:"required"`
	BasePrice   decimal.Decimal  `json:"base_price"`
	SKU         *string          `json:"sku,omitempty" binding:"omitempty,max=100"`
	Variants    []VariantRequest `json:"variants" binding:"dive"`
	Images      []ImageRequest   `json:"images" binding:"dive"`
}

type VariantRequest struct {
	VariantName   string          `json:"variant_name" binding:"required,max=255"`
	VariantPrice  decimal.Decimal `json:"variant_price"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0"`
	SKU           *string         `json:"sku,omitempty" binding:"omitempty,max=100"`
}

type ImageRequest struct {
	ImageURL  string `json:"image_url" binding:"required"`
	IsPrimary bool   `json:"is_primary"`
}

// CreateProductResponse is returned after the product commits.
type CreateProductResponse struct {
	Message   string `json:"message"`
	ProductID int64  `json:"product_id"`
}

func (r *CreateProductRequest) validate() error {
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.Description = strings.TrimSpace(r.Description)
	for i := range r.Variants {
		r.Variants[i].VariantName = strings.TrimSpace(r.Variants[i].VariantName)
	}

	var details apperr.FieldErrors
	if err := mergeValidation(&details, ValidateRequest(r)); err != nil {
		return err
	}
	checkNonNegative(&details, "base_price", r.BasePrice)
	for i, v := range r.Variants {
		checkNonNegative(&details, fmt.Sprintf("variants[%d].variant_price", i), v.VariantPrice)
	}
	return details.Err()
}

// CreateProduct writes a product, its variants and its images atomically.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*CreateProductResponse, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.CreateProduct")
	defer span.End()

	if err := req.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		VendorID:    req.VendorID,
		CategoryID:  req.CategoryID,
		ProductName: req.ProductName,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		SKU:         req.SKU,
	}

	variants := make([]models.Variant, len(req.Variants))
	for i, v := range req.Variants {
		variants[i] = models.Variant{
			VariantName:   v.VariantName,
			VariantPrice:  v.VariantPrice,
			StockQuantity: v.StockQuantity,
			SKU:           v.SKU,
		}
	}

	images := make([]models.Image, len(req.Images))
	for i, img := range req.Images {
		images[i] = models.Image{ImageURL: img.ImageURL, IsPrimary: img.IsPrimary}
	}

	if err := s.store.CreateProduct(ctx, product, variants, images); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return nil, apperr.BadRequest("Vendor or category does not exist")
		}
		return nil, util.RecordError(span, internal(err))
	}

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("vendor_id", product.VendorID),
		zap.Int("variants", len(variants)))

	event := &models.ProductCreatedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeProductCreated),
		ProductID: product.ID,
		VendorID:  product.VendorID,
	}
	if err := s.publisher.PublishProductCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductCreated event", zap.Error(err))
	}

	return &CreateProductResponse{
		Message:   "Product created successfully",
		ProductID: product.ID,
	}, nil
}

// ListProducts returns the whole catalog with nested variants and images.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.ProductListing, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ListProducts")
	defer span.End()

	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}
	return products, nil
}
