package store

import (
	"context"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/jmoiron/sqlx"
)

const vendorColumns = `v.vendor_id, v.user_id, v.store_name, v.store_description, v.store_latitude,
	v.store_longitude, v.delivery_radius, v.commission_rate, v.status, v.created_at, v.updated_at`

const vendorListingColumns = vendorColumns + `, u.first_name, u.last_name, u.email`

// VendorPatch carries the optional fields of a partial vendor update.
type VendorPatch struct {
	StoreName        *string
	StoreDescription *string
	StoreLatitude    *float64
	StoreLongitude   *float64
	DeliveryRadius   *float64
	Status           *string
}

// ListActiveVendors returns one page of active vendors matching search, with owner
// details, and the total number of matches.
func (s *Store) ListActiveVendors(ctx context.Context, search string, p Pagination) ([]models.VendorListing, int64, error) {
	pattern := "%" + search + "%"
	filter := `
		WHERE v.status = 'active'
		AND (v.store_name ILIKE $1 OR v.store_description ILIKE $1)`

	var total int64
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM vendors v"+filter, pattern); err != nil {
		return nil, 0, fmt.Errorf("count vendors: %w", err)
	}

	vendors := []models.VendorListing{}
	query := "SELECT " + vendorListingColumns + " FROM vendors v JOIN users u ON u.user_id = v.user_id" +
		filter + " ORDER BY v.created_at DESC, v.vendor_id DESC LIMIT $2 OFFSET $3"
	if err := s.db.SelectContext(ctx, &vendors, query, pattern, p.Limit, p.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list vendors: %w", err)
	}
	return vendors, total, nil
}

// GetVendorByID retrieves a vendor by ID
func (s *Store) GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.GetContext(ctx, &vendor,
		"SELECT "+vendorColumns+" FROM vendors v WHERE v.vendor_id = $1", id); err != nil {
		return nil, fmt.Errorf("get vendor %d: %w", id, translate(err))
	}
	return &vendor, nil
}

// GetVendorByUserID returns the vendor profile owned by a user.
func (s *Store) GetVendorByUserID(ctx context.Context, userID int64) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := s.db.GetContext(ctx, &vendor,
		"SELECT "+vendorColumns+" FROM vendors v WHERE v.user_id = $1", userID); err != nil {
		return nil, fmt.Errorf("get vendor of user %d: %w", userID, translate(err))
	}
	return &vendor, nil
}

// GetVendorDetail returns a vendor with its owner's details and its products.
func (s *Store) GetVendorDetail(ctx context.Context, id int64) (*models.VendorDetail, error) {
	var detail models.VendorDetail
	query := "SELECT " + vendorListingColumns +
		" FROM vendors v JOIN users u ON u.user_id = v.user_id WHERE v.vendor_id = $1"
	if err := s.db.GetContext(ctx, &detail.VendorListing, query, id); err != nil {
		return nil, fmt.Errorf("get vendor %d: %w", id, translate(err))
	}

	detail.Products = []models.Product{}
	if err := s.db.SelectContext(ctx, &detail.Products,
		"SELECT "+productColumns+" FROM products p WHERE p.vendor_id = $1 ORDER BY p.product_id", id); err != nil {
		return nil, fmt.Errorf("list products of vendor %d: %w", id, err)
	}
	return &detail, nil
}

// CreateVendor turns an existing user into a vendor: the vendor row is inserted and the
// user's role is switched to vendor in the same transaction.
func (s *Store) CreateVendor(ctx context.Context, vendor *models.Vendor) error {
	return s.WithTx(ctx, func(tx *sqlx.Tx) error {
		var userExists bool
		if err := tx.GetContext(ctx, &userExists,
			"SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)", vendor.UserID); err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !userExists {
			return fmt.Errorf("user %d: %w", vendor.UserID, ErrNotFound)
		}

		var alreadyVendor bool
		if err := tx.GetContext(ctx, &alreadyVendor,
			"SELECT EXISTS (SELECT 1 FROM vendors WHERE user_id = $1)", vendor.UserID); err != nil {
			return fmt.Errorf("check vendor: %w", err)
		}
		if alreadyVendor {
			return fmt.Errorf("user %d: %w", vendor.UserID, ErrAlreadyVendor)
		}

		query := `
			INSERT INTO vendors (user_id, store_name, store_description, store_latitude,
				store_longitude, delivery_radius, commission_rate, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING vendor_id, created_at, updated_at`

		if err := tx.GetContext(ctx, vendor, query,
			vendor.UserID, vendor.StoreName, vendor.StoreDescription, vendor.StoreLatitude,
			vendor.StoreLongitude, vendor.DeliveryRadius, vendor.CommissionRate, vendor.Status); err != nil {
			return fmt.Errorf("insert vendor: %w", translate(err))
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET role = $1, updated_at = NOW() WHERE user_id = $2",
			models.RoleVendor, vendor.UserID); err != nil {
			return fmt.Errorf("promote user %d: %w", vendor.UserID, err)
		}
		return nil
	})
}

// UpdateVendor applies the non-nil fields of patch.
func (s *Store) UpdateVendor(ctx context.Context, id int64, patch VendorPatch) (*models.Vendor, error) {
	var vendor models.Vendor
	err := s.db.GetContext(ctx, &vendor, `
		UPDATE vendors v SET
			store_name = COALESCE($1, store_name),
			store_description = COALESCE($2, store_description),
			store_latitude = COALESCE($3, store_latitude),
			store_longitude = COALESCE($4, store_longitude),
			delivery_radius = COALESCE($5, delivery_radius),
			status = COALESCE($6, status),
			updated_at = NOW()
		WHERE v.vendor_id = $7
		RETURNING `+vendorColumns,
		patch.StoreName, patch.StoreDescription, patch.StoreLatitude,
		patch.StoreLongitude, patch.DeliveryRadius, patch.Status, id)
	if err != nil {
		return nil, fmt.Errorf("update vendor %d: %w", id, translate(err))
	}
	return &vendor, nil
}

// DeleteVendor removes a vendor and demotes its owner back to customer. It returns the
// owner's user id.
func (s *Store) DeleteVendor(ctx context.Context, id int64) (int64, error) {
	var userID int64
	err := s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &userID,
			"DELETE FROM vendors WHERE vendor_id = $1 RETURNING user_id", id); err != nil {
			return fmt.Errorf("delete vendor %d: %w", id, translate(err))
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE users SET role = $1, updated_at = NOW() WHERE user_id = $2",
			models.RoleCustomer, userID); err != nil {
			return fmt.Errorf("demote user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}
