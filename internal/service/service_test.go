package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(sqlx.NewDb(db, "postgres")), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
	err    error
}

func (p *recordingPublisher) record(e interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, e *models.OrderCreatedEvent) error {
	return p.record(e)
}

func (p *recordingPublisher) PublishOrderStatusChanged(_ context.Context, e *models.OrderStatusChangedEvent) error {
	return p.record(e)
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, e *models.UserRegisteredEvent) error {
	return p.record(e)
}

func (p *recordingPublisher) PublishVendorCreated(_ context.Context, e *models.VendorCreatedEvent) error {
	return p.record(e)
}

func (p *recordingPublisher) PublishVendorDeleted(_ context.Context, e *models.VendorDeletedEvent) error {
	return p.record(e)
}

func (p *recordingPublisher) PublishProductCreated(_ context.Context, e *models.ProductCreatedEvent) error {
	return p.record(e)
}

// memoryCache is a Cache backed by a map; ttl is ignored.
type memoryCache struct {
	values  map[string]interface{}
	readErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]interface{}{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	if c.readErr != nil {
		return false, c.readErr
	}
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	*(dest.(*models.DashboardStats)) = *(v.(*models.DashboardStats))
	return true, nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func assertKind(t *testing.T, want apperr.Kind, err error) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae), "expected *apperr.Error, got %T: %v", err, err)
	assert.Equal(t, want, ae.Kind)
	return ae
}
