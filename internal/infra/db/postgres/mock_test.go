//go:build !integration

package postgres

import (
	"context"
	"time"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	red "corporate-gifting/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerCatalogRepo mocks the database repository that the product decorator wraps.
type mockInnerCatalogRepo struct {
	SaveFunc      func(ctx context.Context, tx repository.Tx, p *model.Product) error
	FindByIDFunc  func(ctx context.Context, tx repository.Tx, id string) (*model.Product, error)
	FindByIDsFunc func(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Product, error)
}

func (m *mockInnerCatalogRepo) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	return m.SaveFunc(ctx, tx, p)
}
func (m *mockInnerCatalogRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerCatalogRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Product, error) {
	return m.FindByIDsFunc(ctx, tx, ids)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", red.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
