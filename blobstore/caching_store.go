package blobstore

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// CacheStats reports CachingStore effectiveness.
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Bytes  int64
	Blobs  int
}

// CachingStore wraps a BlobStore and caches complete blobs in memory.
//
// Exported snapshots are immutable, so cached entries are only invalidated by
// Put and Delete through this store. Concurrent misses for the same blob are
// collapsed into a single read of the inner store.
type CachingStore struct {
	inner    BlobStore
	maxBytes int64

	group singleflight.Group

	mu      sync.Mutex
	lru     *list.List
	entries map[string]*list.Element
	bytes   int64

	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	name string
	data []byte
}

// NewCachingStore creates a new CachingStore.
// maxBytes defaults to 64MB if <= 0.
func NewCachingStore(inner BlobStore, maxBytes int64) *CachingStore {
	if maxBytes <= 0 {
		maxBytes = 64 << 20
	}
	return &CachingStore{
		inner:    inner,
		maxBytes: maxBytes,
		lru:      list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Open returns the cached blob, loading it from the inner store on a miss.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	if data, ok := s.get(name); ok {
		s.hits.Add(1)
		return newMemoryBlob(data), nil
	}
	s.misses.Add(1)

	v, err, _ := s.group.Do(name, func() (any, error) {
		data, err := ReadAll(ctx, s.inner, name)
		if err != nil {
			return nil, err
		}
		s.add(name, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return newMemoryBlob(v.([]byte)), nil
}

// Put writes through to the inner store and drops the cached entry.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// PutIfNotExists writes through to the inner store.
func (s *CachingStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return PutIfNotExists(ctx, s.inner, name, data)
}

// Delete removes the blob from the inner store and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List is not cached.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache statistics.
func (s *CachingStore) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CacheStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Bytes:  s.bytes,
		Blobs:  s.lru.Len(),
	}
}

func (s *CachingStore) get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[name]
	if !ok {
		return nil, false
	}
	s.lru.MoveToFront(el)
	return el.Value.(*cacheEntry).data, true
}

func (s *CachingStore) add(name string, data []byte) {
	size := int64(len(data))
	if size > s.maxBytes {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[name]; ok {
		s.removeElement(el)
	}
	s.entries[name] = s.lru.PushFront(&cacheEntry{name: name, data: data})
	s.bytes += size

	for s.bytes > s.maxBytes {
		s.removeElement(s.lru.Back())
	}
}

func (s *CachingStore) invalidate(name string) {
	s.group.Forget(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[name]; ok {
		s.removeElement(el)
	}
}

func (s *CachingStore) removeElement(el *list.Element) {
	e := s.lru.Remove(el).(*cacheEntry)
	delete(s.entries, e.name)
	s.bytes -= int64(len(e.data))
}
