package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sparkpay-sync/internal/core/cache"
)

const cursorCacheKey = "sparkpay:orders:cursor"

// RedisCursorRepository implements ports.CursorRepository on top of the cache port.
type RedisCursorRepository struct {
	cache cache.Cache
}

// NewRedisCursorRepository creates a new RedisCursorRepository.
func NewRedisCursorRepository(c cache.Cache) *RedisCursorRepository {
	return &RedisCursorRepository{
		cache: c,
	}
}

// Save stores the cursor without expiration.
func (r *RedisCursorRepository) Save(ctx context.Context, cursor time.Time) error {
	data := []byte(cursor.Format(time.RFC3339Nano))

	if err := r.cache.Set(ctx, cursorCacheKey, data, 0); err != nil {
		return fmt.Errorf("failed to save sync cursor: %w", err)
	}
	return nil
}

// Get returns the stored cursor, with ok false when none exists.
func (r *RedisCursorRepository) Get(ctx context.Context) (time.Time, bool, error) {
	data, err := r.cache.Get(ctx, cursorCacheKey)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get sync cursor: %w", err)
	}

	cursor, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("stored sync cursor %q is corrupt: %w", data, err)
	}
	return cursor, true, nil
}

// Delete removes the stored cursor.
func (r *RedisCursorRepository) Delete(ctx context.Context) error {
	if err := r.cache.Delete(ctx, cursorCacheKey); err != nil {
		return fmt.Errorf("failed to delete sync cursor: %w", err)
	}
	return nil
}
