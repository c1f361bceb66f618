package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/cart"
	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cart:"

type RedisRepository struct {
	cache *cache.RedisClient
	ttl   time.Duration
}

func NewRedisRepository(c *cache.RedisClient, ttl time.Duration) *RedisRepository {
	return &RedisRepository{cache: c, ttl: ttl}
}

func Key(owner string) string {
	return keyPrefix + owner
}

func (r *RedisRepository) Load(ctx context.Context, owner string) (*cart.Contents, error) {
	val, err := r.cache.Client.Get(ctx, Key(owner)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load cart")
	}

	var contents cart.Contents
	if err := json.Unmarshal(val, &contents); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return &contents, nil
}

func (r *RedisRepository) Save(ctx context.Context, owner string, contents *cart.Contents) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := r.cache.Client.Set(ctx, Key(owner), data, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "save cart")
	}
	return nil
}

func (r *RedisRepository) Delete(ctx context.Context, owner string) error {
	if err := r.cache.Client.Del(ctx, Key(owner)).Err(); err != nil {
		return errors.Wrap(err, "delete cart")
	}
	return nil
}
