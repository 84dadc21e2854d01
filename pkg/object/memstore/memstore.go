// Package memstore implements an in-memory object store, used by tests
// and by callers embedding a repository without durable storage.
package memstore

import (
	"fmt"
	"sync"

	"github.com/draftline/quill/pkg/object"
)

var _ object.Store = (*Store)(nil)

type entry struct {
	objType object.ObjectType
	data    []byte
}

// Store keeps objects in a map guarded by an RWMutex.
type Store struct {
	mu      sync.RWMutex
	objects map[object.Hash]entry
}

// New creates an empty in-memory Store.
func New() *Store {
	return &Store{objects: make(map[object.Hash]entry)}
}

// Put stores data under h. Re-putting an existing hash is a no-op.
func (s *Store) Put(h object.Hash, objType object.ObjectType, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[h]; ok {
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[h] = entry{objType: objType, data: cp}
	return nil
}

// Get returns the type and content stored under h.
func (s *Store) Get(h object.Hash) (object.ObjectType, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.objects[h]
	if !ok {
		return "", nil, fmt.Errorf("object get %s: %w", h, object.ErrNotFound)
	}
	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return e.objType, cp, nil
}

// Has reports whether an object with the given hash exists.
func (s *Store) Has(h object.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[h]
	return ok
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Corrupt overwrites the bytes stored under h in place, bypassing the
// content-addressing rules. Test helper for integrity checks.
func (s *Store) Corrupt(h object.Hash, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.objects[h]; ok {
		e.data = data
		s.objects[h] = e
	}
}
