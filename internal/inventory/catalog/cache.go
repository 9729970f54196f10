package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/isabelayared/pharmastock-system/pkg/cache"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// CachedResolver decorates a Resolver with a cache. Lookups that miss the
// cache fall through to the inner resolver and are stored on the way back.
// Cache failures are logged and never fail a lookup.
type CachedResolver struct {
	inner  Resolver
	cache  cache.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedResolver wraps a resolver with a cache
func NewCachedResolver(inner Resolver, c cache.Client, ttl time.Duration, log *logger.Logger) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: log,
	}
}

// Resolve returns the catalog entry for a code, consulting the cache first.
// Unknown codes are cached too, so repeated misses stay cheap.
func (r *CachedResolver) Resolve(ctx context.Context, code string) (*Entry, error) {
	key := "catalog:code:" + code

	if cached, err := r.cache.Get(ctx, key); err == nil {
		if cached == "" {
			return nil, nil
		}
		var entry Entry
		if err := json.Unmarshal([]byte(cached), &entry); err == nil {
			return &entry, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn().Err(err).Str("code", code).Msg("catalog cache read failed")
	}

	entry, err := r.inner.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	value := ""
	if entry != nil {
		if raw, err := json.Marshal(entry); err == nil {
			value = string(raw)
		}
	}
	if err := r.cache.Set(ctx, key, value, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("code", code).Msg("catalog cache write failed")
	}

	return entry, nil
}

// Search queries the inner resolver with cached results per query string
func (r *CachedResolver) Search(ctx context.Context, query string) ([]Entry, error) {
	if len(query) < minQueryLength {
		return []Entry{}, nil
	}

	key := "catalog:search:" + query

	if cached, err := r.cache.Get(ctx, key); err == nil {
		var entries []Entry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return entries, nil
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn().Err(err).Str("query", query).Msg("catalog cache read failed")
	}

	entries, err := r.inner.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(entries); err == nil {
		if err := r.cache.Set(ctx, key, string(raw), r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("query", query).Msg("catalog cache write failed")
		}
	}

	return entries, nil
}
