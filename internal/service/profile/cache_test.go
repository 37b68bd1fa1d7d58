package profile

import (
	"context"
	"errors"
	"testing"
	"time"
)

// countingStore records how often the wrapped store is read.
type countingStore struct {
	Store
	gets int
}

func (c *countingStore) Get(ctx context.Context, owner string) (*Profile, error) {
	c.gets++
	return c.Store.Get(ctx, owner)
}

func TestCachedStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewCachedStore(NewMemoryStore(), time.Minute)
	})
}

func TestCachedStoreServesRepeatedReads(t *testing.T) {
	backing := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backing, time.Minute)
	ctx := context.Background()
	_ = backing.Store.Create(ctx, newTestProfile(testOwner))

	for range 3 {
		if _, err := store.Get(ctx, testOwner); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if backing.gets != 1 {
		t.Fatalf("expected 1 backing read, got %d", backing.gets)
	}
}

func TestCachedStoreRefreshesOnUpdate(t *testing.T) {
	backing := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backing, time.Minute)
	ctx := context.Background()
	_ = store.Create(ctx, newTestProfile(testOwner))

	_, err := store.Update(ctx, testOwner, func(p *Profile) error {
		p.Title = "Updated"
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, _ := store.Get(ctx, testOwner)
	if p.Title != "Updated" {
		t.Fatalf("expected cached entry refreshed, got %s", p.Title)
	}
	if backing.gets != 0 {
		t.Fatalf("expected reads served from cache, got %d backing reads", backing.gets)
	}
}

func TestCachedStoreDoesNotCacheMisses(t *testing.T) {
	backing := NewMemoryStore()
	store := NewCachedStore(backing, time.Minute)
	ctx := context.Background()

	if _, err := store.Get(ctx, testOwner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_ = backing.Create(ctx, newTestProfile(testOwner))
	if _, err := store.Get(ctx, testOwner); err != nil {
		t.Fatalf("miss must not be cached: %v", err)
	}
}

func TestCachedStoreReturnsCopies(t *testing.T) {
	store := NewCachedStore(NewMemoryStore(), time.Minute)
	ctx := context.Background()
	_ = store.Create(ctx, newTestProfile(testOwner))

	p, _ := store.Get(ctx, testOwner)
	p.Title = "mutated"

	again, _ := store.Get(ctx, testOwner)
	if again.Title != "Awesome title" {
		t.Fatalf("cache shares memory with callers: %s", again.Title)
	}
}

func TestCachedStoreFlush(t *testing.T) {
	backing := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backing, time.Minute)
	ctx := context.Background()
	_ = store.Create(ctx, newTestProfile(testOwner))

	store.Flush()
	_, _ = store.Get(ctx, testOwner)
	if backing.gets != 1 {
		t.Fatalf("expected backing read after flush, got %d", backing.gets)
	}
}

func TestCachedStoresSharingBackendSeeUnpublish(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	server := NewRegistry(NewCachedStore(backend, time.Minute))
	card := NewRegistry(NewCachedStore(backend, time.Minute))

	if _, err := server.Create(ctx, testOwner, CreateParams{Title: "Hello", Description: "World"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := server.AddLink(ctx, testOwner, testLinkParams("a")); err != nil {
		t.Fatalf("add link: %v", err)
	}

	// Warm the second cache while the profile is still public.
	if _, err := card.Get(ctx, testOwner); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := card.Info(ctx, testOwner); err != nil {
		t.Fatalf("info: %v", err)
	}

	if _, err := server.UpdatePublishedStatus(ctx, testOwner, false); err != nil {
		t.Fatalf("unpublish: %v", err)
	}

	if info, err := card.Info(ctx, testOwner); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished from info, got info=%v err=%v", info, err)
	}
	if links, err := card.ListLinks(ctx, testOwner); !errors.Is(err, ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished from list, got links=%v err=%v", links, err)
	}
	all, err := card.ListAllLinks(ctx, testOwner, testOwner)
	if err != nil || len(all) != 1 {
		t.Fatalf("owner list: links=%v err=%v", all, err)
	}
}

func TestCachedStoreGetFreshRefreshesEntry(t *testing.T) {
	backing := &countingStore{Store: NewMemoryStore()}
	store := NewCachedStore(backing, time.Minute)
	ctx := context.Background()
	_ = backing.Create(ctx, newTestProfile(testOwner))

	_, _ = store.Get(ctx, testOwner)
	_, _ = backing.Update(ctx, testOwner, func(p *Profile) error {
		p.Title = "Changed elsewhere"
		return nil
	})

	fresh, err := store.GetFresh(ctx, testOwner)
	if err != nil || fresh.Title != "Changed elsewhere" {
		t.Fatalf("expected fresh read, got %v %v", fresh, err)
	}
	cached, _ := store.Get(ctx, testOwner)
	if cached.Title != "Changed elsewhere" {
		t.Fatalf("expected refreshed cache entry, got %q", cached.Title)
	}
	if backing.gets != 2 {
		t.Fatalf("expected 2 backing reads, got %d", backing.gets)
	}

	if _, err := store.GetFresh(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
