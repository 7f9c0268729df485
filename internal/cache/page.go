// page.go provides a Valkey-backed cache for public blog responses.
// Listing contexts and rendered entries are stored per index so a post
// change only evicts the index it belongs to.
package cache

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached responses.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a cached response stays valid.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache manages public response caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves a cached response body for a key. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores a response body for a key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, body []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, body, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// InvalidateIndex removes every cached response under a blog index:
// all listing pages, filter combinations, aggregations, and entries.
func (pc *PageCache) InvalidateIndex(ctx context.Context, indexSlug string) {
	pc.deleteByPattern(ctx, pageKeyPrefix+indexSlug+"*")
	slog.Debug("page cache index invalidated", "index", indexSlug)
}

// InvalidateAll removes all cached responses by scanning for the prefix.
// Used when site settings change, since any response could embed them.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	deleted := pc.deleteByPattern(ctx, pageKeyPrefix+"*")
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

func (pc *PageCache) deleteByPattern(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return deleted
}

// ListingKey returns the cache key for a blog index listing, including
// its filter and pagination query in canonical order.
func ListingKey(indexSlug string, query url.Values) string {
	if len(query) == 0 {
		return indexSlug
	}
	return indexSlug + "?" + query.Encode()
}

// EntryKey returns the cache key for a blog entry detail response.
func EntryKey(indexSlug, entrySlug string) string {
	return indexSlug + "/" + entrySlug
}
