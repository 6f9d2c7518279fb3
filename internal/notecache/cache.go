// Package notecache stores generated study notes keyed by video so that a video is
// sent to the generation service at most once per cache lifetime.
package notecache

//go:generate mockgen -source=cache.go -destination=../mocks/notecache/mock_cache.go -package=mock_notecache

import (
	"context"
	"fmt"
	"log/slog"
)

// Cache maps a cache key to previously generated notes.
// Entries never expire and are never evicted.
type Cache interface {
	// Get reports whether key is present, and its text when it is.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores text under key, replacing any previous entry.
	Put(ctx context.Context, key, text string) error
}

// Store is a Cache backed by a resource that must be released.
type Store interface {
	Cache
	Close() error
}

// GetOrCompute returns the cached text for key, or calls compute and stores its result.
// A failed lookup is treated as a miss. Nothing is stored when compute fails.
// When the write fails the computed text is still returned along with the error.
func GetOrCompute(ctx context.Context, cache Cache, key string, compute func(ctx context.Context) (string, error)) (string, error) {
	text, ok, err := cache.Get(ctx, key)
	if err != nil {
		slog.Default().Warn("notes cache lookup failed, treating as a miss",
			"key", key,
			"error", err,
		)
	} else if ok {
		slog.Default().Debug("notes cache hit", "key", key)
		return text, nil
	}

	text, err = compute(ctx)
	if err != nil {
		return "", err
	}

	if err := cache.Put(ctx, key, text); err != nil {
		return text, fmt.Errorf("cache.Put(%s) > %w", key, err)
	}
	return text, nil
}
