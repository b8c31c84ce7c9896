package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"corporate-gifting/internal/domain/model"
	"corporate-gifting/internal/domain/ports/repository"
	"corporate-gifting/internal/infra/metrics"
	red "corporate-gifting/internal/infra/redis"
)

var _ repository.CatalogRepository = (*catalogRepoCacheDecorator)(nil)

// catalogRepoCacheDecorator serves product reads for catalog views from Redis.
// Reads inside a transaction always go to the store.
type catalogRepoCacheDecorator struct {
	inner repository.CatalogRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewCatalogRepoCacheDecorator(inner repository.CatalogRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.CatalogRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	l := logger.With().Str("component", "ProductCache").Logger()
	return &catalogRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: &l}
}

func productKey(id string) string { return fmt.Sprintf("product:%s", id) }

func (d *catalogRepoCacheDecorator) lookup(ctx context.Context, id string) (*model.Product, bool) {
	val, err := d.cache.Get(ctx, productKey(id))
	if err != nil {
		if !errors.Is(err, red.Nil) {
			metrics.IncCacheRequest("product", "error")
			d.log.Warn().Err(err).Str("product_id", id).Msg("product cache read failed")
		}
		return nil, false
	}
	var p model.Product
	if json.Unmarshal([]byte(val), &p) != nil {
		return nil, false
	}
	return &p, true
}

func (d *catalogRepoCacheDecorator) store(ctx context.Context, p *model.Product) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, productKey(p.ID), b, d.ttl); err != nil {
		d.log.Warn().Err(err).Str("product_id", p.ID).Msg("product cache write failed")
	}
}

func (d *catalogRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	if tx != nil {
		metrics.IncCacheRequest("product", "bypass")
		return d.inner.FindByID(ctx, tx, id)
	}
	if p, ok := d.lookup(ctx, id); ok {
		metrics.IncCacheRequest("product", "hit")
		return p, nil
	}
	metrics.IncCacheRequest("product", "miss")
	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	d.store(ctx, p)
	return p, nil
}

// FindByIDs answers hits from Redis and loads the rest in one store query.
// Results follow the order of ids.
func (d *catalogRepoCacheDecorator) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.Product, error) {
	if tx != nil {
		metrics.IncCacheRequest("product", "bypass")
		return d.inner.FindByIDs(ctx, tx, ids)
	}
	found := make(map[string]*model.Product, len(ids))
	var missing []string
	for _, id := range ids {
		if _, dup := found[id]; dup {
			continue
		}
		if p, ok := d.lookup(ctx, id); ok {
			metrics.IncCacheRequest("product", "hit")
			found[id] = p
			continue
		}
		metrics.IncCacheRequest("product", "miss")
		missing = append(missing, id)
	}
	if len(missing) > 0 {
		loaded, err := d.inner.FindByIDs(ctx, tx, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range loaded {
			found[p.ID] = p
			d.store(ctx, p)
		}
	}

	out := make([]*model.Product, 0, len(found))
	seen := make(map[string]struct{}, len(found))
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

// Save invalidates around the write: the second delete evicts any old row a
// concurrent reader cached while the write was in flight. Prices changed
// outside this decorator stay visible in catalog views for up to the TTL;
// commits read the uncached store, so budget checks are unaffected.
func (d *catalogRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Product) error {
	d.invalidate(ctx, p.ID)
	if err := d.inner.Save(ctx, tx, p); err != nil {
		return err
	}
	d.invalidate(ctx, p.ID)
	return nil
}

func (d *catalogRepoCacheDecorator) invalidate(ctx context.Context, id string) {
	if err := d.cache.Del(ctx, productKey(id)); err != nil {
		d.log.Warn().Err(err).Str("product_id", id).Msg("product cache invalidation failed")
	}
}
