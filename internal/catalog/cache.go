package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fretsource/guitar-scout/internal/model"
)

type cachedResult struct {
	Listings []model.Listing `json:"listings"`
	Expires  time.Time       `json:"expires"`
}

// CachedSource wraps a Source with an in-process LRU and an optional shared
// Redis layer. Cache failures never fail a search; they fall through to the
// wrapped source.
type CachedSource struct {
	src Source
	lru *lru.Cache[string, cachedResult]
	rdb *redis.Client
	ttl time.Duration
}

// CacheOptions configures a CachedSource.
type CacheOptions struct {
	// LRUSize is the in-process entry cap. Default: 128.
	LRUSize int
	// Redis enables the shared layer when non-nil.
	Redis *redis.Client
	// TTL bounds entry freshness in both layers. Default: 15m.
	TTL time.Duration
}

// NewCachedSource wraps src with result caching.
func NewCachedSource(src Source, opts CacheOptions) (*CachedSource, error) {
	if opts.LRUSize <= 0 {
		opts.LRUSize = 128
	}
	if opts.TTL <= 0 {
		opts.TTL = 15 * time.Minute
	}

	l, err := lru.New[string, cachedResult](opts.LRUSize)
	if err != nil {
		return nil, err
	}

	return &CachedSource{
		src: src,
		lru: l,
		rdb: opts.Redis,
		ttl: opts.TTL,
	}, nil
}

func (c *CachedSource) Name() string { return c.src.Name() }

func (c *CachedSource) Search(ctx context.Context, filter model.CatalogFilter) ([]model.Listing, error) {
	key := cacheKey(c.src.Name(), filter)

	if entry, ok := c.lru.Get(key); ok && time.Now().Before(entry.Expires) {
		return entry.Listings, nil
	}

	if listings, ok := c.fromRedis(ctx, key); ok {
		c.lru.Add(key, cachedResult{Listings: listings, Expires: time.Now().Add(c.ttl)})
		return listings, nil
	}

	listings, err := c.src.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	entry := cachedResult{Listings: listings, Expires: time.Now().Add(c.ttl)}
	c.lru.Add(key, entry)
	c.toRedis(ctx, key, entry)

	return listings, nil
}

func (c *CachedSource) fromRedis(ctx context.Context, key string) ([]model.Listing, bool) {
	if c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var entry cachedResult
	if err := json.Unmarshal(raw, &entry); err != nil {
		zap.L().Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return entry.Listings, true
}

func (c *CachedSource) toRedis(ctx context.Context, key string, entry cachedResult) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		zap.L().Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey builds a stable key from the filter. Brands and terms are
// sorted so logically equal filters share an entry.
func cacheKey(source string, f model.CatalogFilter) string {
	brands := append([]string(nil), f.Brands...)
	for i := range brands {
		brands[i] = strings.ToLower(brands[i])
	}
	sort.Strings(brands)

	terms := append([]string(nil), f.SearchTerms...)
	for i := range terms {
		terms[i] = strings.ToLower(terms[i])
	}
	sort.Strings(terms)

	return fmt.Sprintf("catalog:%s:%.0f-%.0f:%s:%s:%d",
		source, f.PriceMin, f.PriceMax,
		strings.Join(brands, ","), strings.Join(terms, ","), f.MaxResults)
}
