package cache

import (
	"context"
	"time"
)

// NameService is the lookup surface that CachedNameService wraps.
type NameService interface {
	ReverseResolve(ctx context.Context, address string) (string, error)
	ForwardResolve(ctx context.Context, name string) (string, error)
	ResolveAvatar(ctx context.Context, name string) (string, error)
}

// Recorder receives cache hits and misses.
type Recorder interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// CachedNameService answers lookups from a LookupCache and falls through to
// the wrapped service for missing or stale entries. Failed lookups are not
// cached.
type CachedNameService struct {
	next     NameService
	cache    Cache
	ttl      time.Duration
	recorder Recorder
}

// Compile-time interface check
var _ NameService = (*CachedNameService)(nil)

// NewCachedNameService wraps next. A non-positive ttl uses DefaultTTL.
// recorder may be nil.
func NewCachedNameService(next NameService, cache Cache, ttl time.Duration, recorder Recorder) *CachedNameService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedNameService{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		recorder: recorder,
	}
}

// ForwardResolve resolves a name to an address.
func (s *CachedNameService) ForwardResolve(ctx context.Context, name string) (string, error) {
	return s.lookup(ctx, MethodForward, name, s.next.ForwardResolve)
}

// ReverseResolve resolves an address to its primary name.
func (s *CachedNameService) ReverseResolve(ctx context.Context, address string) (string, error) {
	return s.lookup(ctx, MethodReverse, address, s.next.ReverseResolve)
}

// ResolveAvatar resolves a name to its avatar URI.
func (s *CachedNameService) ResolveAvatar(ctx context.Context, name string) (string, error) {
	return s.lookup(ctx, MethodAvatar, name, s.next.ResolveAvatar)
}

func (s *CachedNameService) lookup(ctx context.Context, method Method, key string,
	fn func(context.Context, string) (string, error),
) (string, error) {
	if entry, ok, age := s.cache.Get(method, key); ok && age <= s.ttl {
		if s.recorder != nil {
			s.recorder.RecordCacheHit()
		}
		return entry.Value, nil
	}
	if s.recorder != nil {
		s.recorder.RecordCacheMiss()
	}

	value, err := fn(ctx, key)
	if err != nil {
		return "", err
	}
	s.cache.Set(Entry{Method: method, Key: key, Value: value})
	return value, nil
}
