package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/domain/ports/repository"
	"wedding-ecard-platform/internal/infra/metrics"
	red "wedding-ecard-platform/internal/infra/redis"
)

var _ repository.ECardRepository = (*ecardRepoCacheDecorator)(nil)

// ecardRepoCacheDecorator caches slug lookups, the hot path for public card
// views. Writes invalidate both keys so an unlock is visible immediately.
type ecardRepoCacheDecorator struct {
	inner repository.ECardRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewECardRepoCacheDecorator(inner repository.ECardRepository, cache red.RedisClient, ttl time.Duration) repository.ECardRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ecardRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func (d *ecardRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, c *model.ECard) error {
	_ = d.cache.Del(ctx, idKey(c.ID), slugKey(c.Slug))
	return d.inner.Save(ctx, tx, c)
}

func (d *ecardRepoCacheDecorator) SetPaid(ctx context.Context, tx repository.Tx, id string) error {
	// Slug unknown here; fetch through inner so a stale cached copy never
	// masks the unlock.
	if c, err := d.inner.FindByID(ctx, tx, id); err == nil {
		_ = d.cache.Del(ctx, idKey(c.ID), slugKey(c.Slug))
	} else {
		_ = d.cache.Del(ctx, idKey(id))
	}
	return d.inner.SetPaid(ctx, tx, id)
}

func (d *ecardRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ECard, error) {
	// Transactional reads take row locks; bypass the cache for them.
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	return d.lookup(ctx, idKey(id), func() (*model.ECard, error) {
		return d.inner.FindByID(ctx, tx, id)
	})
}

func (d *ecardRepoCacheDecorator) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.ECard, error) {
	if tx != nil {
		return d.inner.FindBySlug(ctx, tx, slug)
	}
	return d.lookup(ctx, slugKey(slug), func() (*model.ECard, error) {
		return d.inner.FindBySlug(ctx, tx, slug)
	})
}

func (d *ecardRepoCacheDecorator) ListByOwner(ctx context.Context, tx repository.Tx, ownerID string) ([]*model.ECard, error) {
	return d.inner.ListByOwner(ctx, tx, ownerID)
}

func (d *ecardRepoCacheDecorator) lookup(ctx context.Context, key string, load func() (*model.ECard, error)) (*model.ECard, error) {
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var c model.ECard
		if json.Unmarshal([]byte(val), &c) == nil {
			metrics.IncCacheRequest("ecard", "hit")
			return &c, nil
		}
	}
	if err != nil && err != redis.Nil {
		metrics.IncCacheRequest("ecard", "error")
	} else if err == redis.Nil {
		metrics.IncCacheRequest("ecard", "miss")
	}

	c, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(c); err == nil {
		_ = d.cache.Set(ctx, idKey(c.ID), b, d.ttl)
		_ = d.cache.Set(ctx, slugKey(c.Slug), b, d.ttl)
	}
	return c, nil
}

func idKey(id string) string     { return fmt.Sprintf("ecard:id:%s", id) }
func slugKey(slug string) string { return fmt.Sprintf("ecard:slug:%s", slug) }
