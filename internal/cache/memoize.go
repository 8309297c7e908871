package cache

import (
	"context"
	"time"
)

// Memoize is the typed convenience wrapper around Store.Do.
func Memoize[T any](ctx context.Context, s *Store, key string, ttl time.Duration, tags []string, producer func(context.Context) (T, error)) (T, error) {
	v, err := s.Do(ctx, key, ttl, tags, func(ctx context.Context) (any, error) {
		return producer(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
