package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const productColumns = `p.product_id, p.vendor_id, p.category_id, p.product_name, p.description,
	p.base_price, p.sku, p.created_at, p.updated_at`

const variantColumns = `variant_id, product_id, variant_name, variant_price, stock_quantity, sku`

const imageColumns = `image_id, product_id, image_url, is_primary`

// CreateProduct inserts a product with all of its variants and images. Either everything
// is written or nothing is.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product, variants []models.Variant, images []models.Image) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO products (vendor_id, category_id, product_name, description, base_price, sku)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING product_id, created_at, updated_at`

		if err := tx.GetContext(ctx, product, query,
			product.VendorID, product.CategoryID, product.ProductName,
			product.Description, product.BasePrice, product.SKU); err != nil {
			return fmt.Errorf("insert product: %w", translate(err))
		}

		for i := range variants {
			variants[i].ProductID = product.ID
			if err := tx.GetContext(ctx, &variants[i].ID, `
				INSERT INTO product_variants (product_id, variant_name, variant_price, stock_quantity, sku)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING variant_id`,
				product.ID, variants[i].VariantName, variants[i].VariantPrice,
				variants[i].StockQuantity, variants[i].SKU); err != nil {
				return fmt.Errorf("insert variant %q: %w", variants[i].VariantName, translate(err))
			}
		}

		for i := range images {
			images[i].ProductID = product.ID
			if err := tx.GetContext(ctx, &images[i].ID, `
				INSERT INTO product_images (product_id, image_url, is_primary)
				VALUES ($1, $2, $3)
				RETURNING image_id`,
				product.ID, images[i].ImageURL, images[i].IsPrimary); err != nil {
				return fmt.Errorf("insert image: %w", translate(err))
			}
		}
		return nil
	})
}

// ListProducts returns every product with its store and category names, variants and images.
func (s *Store) ListProducts(ctx context.Context) ([]models.ProductListing, error) {
	products := []models.ProductListing{}
	query := "SELECT " + productColumns + `, v.store_name, c.category_name
		FROM products p
		LEFT JOIN vendors v ON v.vendor_id = p.vendor_id
		LEFT JOIN categories c ON c.category_id = p.category_id
		ORDER BY p.product_id`
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if err := s.attachProductDetails(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) attachProductDetails(ctx context.Context, products []models.ProductListing) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = i
		products[i].Variants = []models.Variant{}
		products[i].Images = []models.Image{}
	}

	var variants []models.Variant
	if err := s.selectIn(ctx, &variants,
		"SELECT "+variantColumns+" FROM product_variants WHERE product_id IN (?) ORDER BY variant_id", ids); err != nil {
		return fmt.Errorf("list variants: %w", err)
	}

	var images []models.Image
	if err := s.selectIn(ctx, &images,
		"SELECT "+imageColumns+" FROM product_images WHERE product_id IN (?) ORDER BY image_id", ids); err != nil {
		return fmt.Errorf("list images: %w", err)
	}

	for _, v := range variants {
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}
	for _, img := range images {
		if i, ok := index[img.ProductID]; ok {
			products[i].Images = append(products[i].Images, img)
		}
	}
	return nil
}
