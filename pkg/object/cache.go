package object

import (
	lru "github.com/hashicorp/golang-lru"
)

var _ Store = (*CachedStore)(nil)

type cachedObject struct {
	objType ObjectType
	data    []byte
}

// CachedStore wraps a Store with a read-through LRU cache. Objects are
// immutable once written, so cached entries never go stale.
type CachedStore struct {
	c *lru.Cache // Hash -> cachedObject
	s Store
}

// NewCachedStore wraps s with an LRU cache of the given size.
func NewCachedStore(s Store, size int) (*CachedStore, error) {
	c, err := lru.New(size)
	return &CachedStore{s: s, c: c}, err
}

// Get returns the cached object when present, otherwise reads through
// and populates the cache.
func (s *CachedStore) Get(h Hash) (ObjectType, []byte, error) {
	if got, ok := s.c.Get(h); ok {
		co := got.(cachedObject)
		return co.objType, co.data, nil
	}
	objType, data, err := s.s.Get(h)
	if err != nil {
		return "", nil, err
	}
	s.c.Add(h, cachedObject{objType: objType, data: data})
	return objType, data, nil
}

// Put writes through to the underlying store and caches the result.
func (s *CachedStore) Put(h Hash, objType ObjectType, data []byte) error {
	if err := s.s.Put(h, objType, data); err != nil {
		return err
	}
	s.c.Add(h, cachedObject{objType: objType, data: data})
	return nil
}

// Has consults the cache before the underlying store.
func (s *CachedStore) Has(h Hash) bool {
	if s.c.Contains(h) {
		return true
	}
	return s.s.Has(h)
}
