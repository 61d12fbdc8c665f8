package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-crm-messaging/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const clientCacheKeyPrefix = "crm-messaging::client_by_phone::v1"

// CachedClientStore fronts phone lookups with a cache. Every inbound webhook
// resolves its sender by phone, so this is the hottest read in the system.
// Writes go straight through and invalidate the phone entry.
type CachedClientStore struct {
	base  core.ClientStore
	cache repositorycache.CacheService
}

func NewCachedClientStore(base core.ClientStore, cacheService repositorycache.CacheService) (*CachedClientStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base client store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: client cache service is required")
	}
	return &CachedClientStore{base: base, cache: cacheService}, nil
}

// ClientCacheKey returns the deterministic cache key for phone lookups:
// crm-messaging::client_by_phone::v1::<phone> with the phone URL-path escaped.
func ClientCacheKey(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("sqlstore: client phone is required")
	}
	return clientCacheKeyPrefix + "::" + url.PathEscape(phone), nil
}

func (s *CachedClientStore) Create(ctx context.Context, in core.CreateClientInput) (core.Client, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Client{}, fmt.Errorf("sqlstore: cached client store is not configured")
	}
	created, err := s.base.Create(ctx, in)
	if err != nil {
		return core.Client{}, err
	}
	cacheKey, keyErr := ClientCacheKey(created.Phone)
	if keyErr == nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			return core.Client{}, err
		}
	}
	return created, nil
}

func (s *CachedClientStore) Get(ctx context.Context, id string) (core.Client, error) {
	if s == nil || s.base == nil {
		return core.Client{}, fmt.Errorf("sqlstore: cached client store is not configured")
	}
	return s.base.Get(ctx, id)
}

func (s *CachedClientStore) GetByPhone(ctx context.Context, phone string) (core.Client, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Client{}, fmt.Errorf("sqlstore: cached client store is not configured")
	}
	cacheKey, err := ClientCacheKey(phone)
	if err != nil {
		return core.Client{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Client, error) {
		return s.base.GetByPhone(ctx, phone)
	})
}

var _ core.ClientStore = (*CachedClientStore)(nil)
