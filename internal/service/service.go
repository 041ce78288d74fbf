// Package service holds the marketplace business operations. Services validate input,
// call the store, and translate store errors into apperr kinds.
package service

import (
	"context"
	"errors"
	"time"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
)

// Publisher emits domain events. Publishing happens after the write it describes has
// committed, and a failed publish never fails the request.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
	PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error
	PublishVendorCreated(ctx context.Context, event *models.VendorCreatedEvent) error
	PublishVendorDeleted(ctx context.Context, event *models.VendorDeletedEvent) error
	PublishProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error
}

// Cache is a JSON key/value cache with expiry.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// notFoundOr maps store.ErrNotFound to a 404 carrying message and wraps anything else
// as an internal error.
func notFoundOr(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(message)
	}
	return internal(err)
}

func internal(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(err.Error(), err)
}

// referenceOr maps store.ErrInvalidReference to a 400 carrying message.
func referenceOr(err error, message string) error {
	if errors.Is(err, store.ErrInvalidReference) {
		return apperr.BadRequest(message)
	}
	return internal(err)
}
