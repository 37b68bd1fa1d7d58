package profile

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedStore keeps recently read profiles in process memory in front of
// another Store. Writes through this store refresh the cached entry; writes
// from other processes become visible to Get once the entry expires.
// GetFresh always reads the backing store, so visibility checks never see a
// published flag another process has since cleared.
type CachedStore struct {
	next  Store
	cache *gocache.Cache
}

// NewCachedStore wraps next with a cache whose entries live for ttl.
func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (s *CachedStore) Get(ctx context.Context, owner string) (*Profile, error) {
	if v, ok := s.cache.Get(owner); ok {
		return v.(*Profile).Clone(), nil
	}
	p, err := s.next.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(owner, p.Clone())
	return p, nil
}

// GetFresh bypasses the cache for the read and refreshes the entry.
func (s *CachedStore) GetFresh(ctx context.Context, owner string) (*Profile, error) {
	p, err := s.next.Get(ctx, owner)
	if err != nil {
		s.cache.Delete(owner)
		return nil, err
	}
	s.cache.SetDefault(owner, p.Clone())
	return p, nil
}

func (s *CachedStore) Create(ctx context.Context, p *Profile) error {
	if err := s.next.Create(ctx, p); err != nil {
		s.cache.Delete(p.Owner)
		return err
	}
	s.cache.SetDefault(p.Owner, p.Clone())
	return nil
}

func (s *CachedStore) Update(ctx context.Context, owner string, fn func(p *Profile) error) (*Profile, error) {
	p, err := s.next.Update(ctx, owner, fn)
	if err != nil {
		s.cache.Delete(owner)
		return nil, err
	}
	s.cache.SetDefault(owner, p.Clone())
	return p, nil
}

// Flush drops every cached entry.
func (s *CachedStore) Flush() {
	s.cache.Flush()
}

// Compile-time interface checks
var (
	_ Store       = (*CachedStore)(nil)
	_ freshReader = (*CachedStore)(nil)
)
