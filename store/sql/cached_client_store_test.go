package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-crm-messaging/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubClientStore struct {
	mu            sync.Mutex
	client        core.Client
	getCalls      int
	createCalls   int
	getByPhoneErr error
}

func (s *stubClientStore) Create(_ context.Context, in core.CreateClientInput) (core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	s.client = core.Client{
		ID:    "cli-stub",
		Name:  in.Name,
		Phone: in.Phone,
	}
	return s.client, nil
}

func (s *stubClientStore) Get(_ context.Context, _ string) (core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client, nil
}

func (s *stubClientStore) GetByPhone(_ context.Context, _ string) (core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getByPhoneErr != nil {
		return core.Client{}, s.getByPhoneErr
	}
	return s.client, nil
}

func TestCachedClientStore_GetByPhone_MissFetchThenHit(t *testing.T) {
	cacheService := newTestClientCacheService(t)
	base := &stubClientStore{client: core.Client{ID: "cli-1", Phone: "+77001234567"}}

	store, err := NewCachedClientStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached client store: %v", err)
	}

	if _, err := store.GetByPhone(context.Background(), "+77001234567"); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected first get to fetch base store once, got %d", base.getCalls)
	}

	if _, err := store.GetByPhone(context.Background(), "+77001234567"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.getCalls != 1 {
		t.Fatalf("expected second get to be cache hit, base get calls=%d", base.getCalls)
	}
}

func TestCachedClientStore_Create_InvalidatesPhoneEntry(t *testing.T) {
	cacheService := newTestClientCacheService(t)
	base := &stubClientStore{client: core.Client{ID: "cli-1", Phone: "+77001234567"}}

	store, err := NewCachedClientStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached client store: %v", err)
	}

	if _, err := store.GetByPhone(context.Background(), "+77001234567"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	if _, err := store.Create(context.Background(), core.CreateClientInput{
		Name:  "Fresh",
		Phone: "+77001234567",
	}); err != nil {
		t.Fatalf("create through cached store: %v", err)
	}

	client, err := store.GetByPhone(context.Background(), "+77001234567")
	if err != nil {
		t.Fatalf("get after invalidation: %v", err)
	}
	if base.getCalls != 2 {
		t.Fatalf("expected invalidated entry to force second base read, got %d", base.getCalls)
	}
	if client.Name != "Fresh" {
		t.Fatalf("expected refreshed client, got %q", client.Name)
	}
}

func TestClientCacheKey_Contract(t *testing.T) {
	key, err := ClientCacheKey(" +7 700/123 ")
	if err != nil {
		t.Fatalf("build cache key: %v", err)
	}
	const expected = "crm-messaging::client_by_phone::v1::+7%20700%2F123"
	if key != expected {
		t.Fatalf("unexpected cache key contract: got %q want %q", key, expected)
	}
}

func TestCachedClientStore_PropagatesBaseErrors(t *testing.T) {
	cacheService := newTestClientCacheService(t)
	base := &stubClientStore{getByPhoneErr: core.ErrClientNotFound}
	store, err := NewCachedClientStore(base, cacheService)
	if err != nil {
		t.Fatalf("new cached client store: %v", err)
	}

	_, err = store.GetByPhone(context.Background(), "+77009999999")
	if !errors.Is(err, core.ErrClientNotFound) {
		t.Fatalf("expected base error propagation, got %v", err)
	}
}

func newTestClientCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
