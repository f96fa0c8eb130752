// Package cache содержит кэш списков заявок в Redis.
//
// Ключи списков включают номер версии сущности. Инвалидация увеличивает версию,
// поэтому старые ключи перестают читаться и истекают по TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

const keyPrefix = "payroll"

// RedisCache кэширует JSON-представления списков в Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache подключается к Redis и проверяет соединение.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{rdb: rdb, ttl: ttl}, nil
}

func versionKey(entity model.Entity) string {
	return keyPrefix + ":ver:" + string(entity)
}

func listKey(entity model.Entity, version int64, key string) string {
	return fmt.Sprintf("%s:list:%s:v%d:%s", keyPrefix, entity, version, key)
}

func (c *RedisCache) version(ctx context.Context, entity model.Entity) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(entity)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get читает список из кэша в dest. Возвращает false, если значения нет, и версию списков сущности
// на момент чтения. Промах сохраняется через Set с этой версией: после инвалидации такая запись
// уже не читается.
func (c *RedisCache) Get(ctx context.Context, entity model.Entity, key string, dest any) (bool, int64, error) {
	if c == nil {
		return false, 0, nil
	}

	v, err := c.version(ctx, entity)
	if err != nil {
		return false, 0, err
	}

	val, err := c.rdb.Get(ctx, listKey(entity, v, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, v, nil
	} else if err != nil {
		return false, v, err
	}

	return true, v, json.Unmarshal(val, dest)
}

// Set сохраняет список в кэш под версией, полученной из Get, с TTL кэша.
func (c *RedisCache) Set(ctx context.Context, entity model.Entity, version int64, key string, value any) error {
	if c == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, listKey(entity, version, key), b, c.ttl).Err()
}

// Invalidate делает недействительными все закэшированные списки сущности.
func (c *RedisCache) Invalidate(ctx context.Context, entity model.Entity) error {
	if c == nil {
		return nil
	}
	return c.rdb.Incr(ctx, versionKey(entity)).Err()
}

// Close закрывает соединение с Redis.
func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
