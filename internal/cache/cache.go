// Package cache provides a process-wide memoization store with TTL expiry
// and tag-based invalidation. Concurrent calls for the same uncached key
// collapse to a single producer invocation.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value      any
	computedAt time.Time
	ttl        time.Duration
	tags       []string
}

// Store memoizes expensive computations keyed by string.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	byTag       map[string]map[string]struct{} // tag → keys holding it
	invalidated map[string]time.Time           // tag → time of last invalidation
	group       singleflight.Group
	now         func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// New returns an empty Store using the wall clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty Store reading time through now. Tests use
// this to step through TTL windows without sleeping.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		entries:     make(map[string]*entry),
		byTag:       make(map[string]map[string]struct{}),
		invalidated: make(map[string]time.Time),
		now:         now,
	}
}

// Do returns the cached value for key if it is still fresh, otherwise runs
// producer and stores the result under the given TTL and invalidation
// tags. A zero or negative TTL disables storage for the key: every call
// recomputes, though concurrent callers still share one in-flight
// producer. Producer errors are never cached.
func (s *Store) Do(ctx context.Context, key string, ttl time.Duration, tags []string, producer func(context.Context) (any, error)) (any, error) {
	if v, ok := s.lookup(key); ok {
		s.hits.Add(1)
		return v, nil
	}
	s.misses.Add(1)

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Another caller may have populated the entry while we waited
		// for the flight group.
		if v, ok := s.lookup(key); ok {
			return v, nil
		}
		started := s.now()
		v, err := producer(ctx)
		if err != nil {
			return nil, err
		}
		if ttl > 0 {
			s.put(key, v, started, ttl, tags)
		}
		return v, nil
	})
	return v, err
}

// Invalidate voids every entry whose tag set contains tag, regardless of
// remaining TTL, taking effect before the next Do call for any affected
// key. An in-flight producer still completes, but its result is not kept
// if it started before the invalidation.
func (s *Store) Invalidate(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidated[tag] = s.now()
	for key := range s.byTag[tag] {
		s.evict(key)
	}
	delete(s.byTag, tag)
}

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Stats returns the current counters. Entries counts stored entries
// including those expired but not yet evicted.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: n,
	}
}

// lookup returns the value for key when the entry exists, has not aged out,
// and none of its tags were invalidated at or after its computation time.
func (s *Store) lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.computedAt) >= e.ttl {
		return nil, false
	}
	for _, t := range e.tags {
		if inv, ok := s.invalidated[t]; ok && !e.computedAt.After(inv) {
			return nil, false
		}
	}
	return e.value, true
}

// put stores value under key. computedAt is when the producer started, so
// an invalidation racing a long producer still voids the entry.
func (s *Store) put(key string, value any, computedAt time.Time, ttl time.Duration, tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evict(key)
	s.entries[key] = &entry{
		value:      value,
		computedAt: computedAt,
		ttl:        ttl,
		tags:       tags,
	}
	for _, t := range tags {
		keys, ok := s.byTag[t]
		if !ok {
			keys = make(map[string]struct{})
			s.byTag[t] = keys
		}
		keys[key] = struct{}{}
	}
}

// evict removes key and its reverse tag links. Callers hold the write lock.
func (s *Store) evict(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	for _, t := range e.tags {
		if keys, ok := s.byTag[t]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(s.byTag, t)
			}
		}
	}
	delete(s.entries, key)
}
