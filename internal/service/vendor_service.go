package service

import (
	"context"
	"errors"
	"strings"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/auth"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/geo"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// VendorService manages vendor profiles.
type VendorService struct {
	store     *store.Store
	publisher Publisher
	logger    *zap.Logger
}

func NewVendorService(store *store.Store, publisher Publisher) *VendorService {
	return &VendorService{
		store:     store,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// VendorQuery filters the public vendor listing. Latitude and Longitude must both be
// set for the delivery radius filter to apply.
type VendorQuery struct {
	Page      int
	Size      int
	Search    string
	Latitude  *float64
	Longitude *float64
}

// CreateVendorRequest promotes an existing user to a vendor.
type CreateVendorRequest struct {
	UserID           int64   `json:"user_id" binding:"required,min=1"`
	StoreName        string  `json:"store_name" binding:"required,min=2,max=100"`
	StoreDescription string  `json:"store_description" binding:"required"`
	StoreLatitude    float64 `json:"store_latitude" binding:"gte=-90,lte=90"`
	StoreLongitude   float64 `json:"store_longitude" binding:"gte=-180,lte=180"`
	DeliveryRadius   float64 `json:"delivery_radius" binding:"gte=0"`
}

// UpdateVendorRequest holds the fields a partial update may change.
type UpdateVendorRequest struct {
	StoreName        *string  `json:"store_name,omitempty" binding:"omitempty,min=2,max=100"`
	StoreDescription *string  `json:"store_description,omitempty"`
	StoreLatitude    *float64 `json:"store_latitude,omitempty" binding:"omitempty,gte=-90,lte=90"`
	StoreLongitude   *float64 `json:"store_longitude,omitempty" binding:"omitempty,gte=-180,lte=180"`
	DeliveryRadius   *float64 `json:"delivery_radius,omitempty" binding:"omitempty,gte=0"`
	Status           *string  `json:"status,omitempty" binding:"omitempty,oneof=active inactive"`
}

// ListVendors returns active vendors, optionally only those delivering to a location.
// With a location the page holds only the vendors in range and totalItems counts them.
func (s *VendorService) ListVendors(ctx context.Context, q VendorQuery) (store.Page, error) {
	ctx, span := util.StartSpan(ctx, "VendorService.ListVendors")
	defer span.End()

	p := store.NewPagination(q.Page, q.Size)
	vendors, total, err := s.store.ListActiveVendors(ctx, strings.TrimSpace(q.Search), p)
	if err != nil {
		return store.Page{}, util.RecordError(span, internal(err))
	}

	if q.Latitude != nil && q.Longitude != nil {
		inRange := make([]models.VendorListing, 0, len(vendors))
		for _, v := range vendors {
			if geo.IsWithinDeliveryRadius(v.StoreLatitude, v.StoreLongitude, *q.Latitude, *q.Longitude, v.DeliveryRadius) {
				inRange = append(inRange, v)
			}
		}
		vendors = inRange
		total = int64(len(inRange))
	}

	return p.NewPage(vendors, total), nil
}

// GetVendor returns a vendor with owner details and products.
func (s *VendorService) GetVendor(ctx context.Context, id int64) (*models.VendorDetail, error) {
	ctx, span := util.StartSpan(ctx, "VendorService.GetVendor")
	defer span.End()

	detail, err := s.store.GetVendorDetail(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Vendor not found")
	}
	return detail, nil
}

// CreateVendor turns a user into a vendor.
func (s *VendorService) CreateVendor(ctx context.Context, req *CreateVendorRequest) (*models.Vendor, error) {
	ctx, span := util.StartSpan(ctx, "VendorService.CreateVendor")
	defer span.End()

	req.StoreName = strings.TrimSpace(req.StoreName)
	req.StoreDescription = strings.TrimSpace(req.StoreDescription)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	vendor := &models.Vendor{
		UserID:           req.UserID,
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		StoreLatitude:    req.StoreLatitude,
		StoreLongitude:   req.StoreLongitude,
		DeliveryRadius:   req.DeliveryRadius,
		CommissionRate:   models.DefaultCommissionRate,
		Status:           models.VendorStatusActive,
	}

	if err := s.store.CreateVendor(ctx, vendor); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyVendor), errors.Is(err, store.ErrDuplicate):
			return nil, apperr.BadRequest("User is already a vendor")
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound("User not found")
		}
		return nil, util.RecordError(span, internal(err))
	}

	s.logger.Info("Vendor created", zap.Int64("vendor_id", vendor.ID), zap.Int64("user_id", vendor.UserID))

	event := &models.VendorCreatedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeVendorCreated),
		VendorID:  vendor.ID,
		UserID:    vendor.UserID,
	}
	if err := s.publisher.PublishVendorCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish VendorCreated event", zap.Error(err))
	}

	return vendor, nil
}

// UpdateVendor applies a partial update. Vendors may only update their own store.
func (s *VendorService) UpdateVendor(ctx context.Context, claims *auth.Claims, id int64, req *UpdateVendorRequest) (*models.Vendor, error) {
	ctx, span := util.StartSpan(ctx, "VendorService.UpdateVendor")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	if claims.Role == models.RoleVendor {
		existing, err := s.store.GetVendorByID(ctx, id)
		if err != nil {
			return nil, notFoundOr(err, "Vendor not found")
		}
		if existing.UserID != claims.UserID {
			return nil, apperr.Forbidden("You can only update your own store")
		}
	}

	vendor, err := s.store.UpdateVendor(ctx, id, store.VendorPatch{
		StoreName:        req.StoreName,
		StoreDescription: req.StoreDescription,
		StoreLatitude:    req.StoreLatitude,
		StoreLongitude:   req.StoreLongitude,
		DeliveryRadius:   req.DeliveryRadius,
		Status:           req.Status,
	})
	if err != nil {
		return nil, notFoundOr(err, "Vendor not found")
	}
	return vendor, nil
}

// DeleteVendor removes a vendor and demotes its owner to customer.
func (s *VendorService) DeleteVendor(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "VendorService.DeleteVendor")
	defer span.End()

	userID, err := s.store.DeleteVendor(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return apperr.BadRequest("Vendor still has orders")
		}
		return notFoundOr(err, "Vendor not found")
	}

	s.logger.Info("Vendor deleted", zap.Int64("vendor_id", id), zap.Int64("user_id", userID))

	event := &models.VendorDeletedEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeVendorDeleted),
		VendorID:  id,
		UserID:    userID,
	}
	if err := s.publisher.PublishVendorDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish VendorDeleted event", zap.Error(err))
	}
	return nil
}
