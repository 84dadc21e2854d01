package object

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a hash with no stored object behind it.
var ErrNotFound = errors.New("object not found")

// ErrIntegrity reports a stored object whose recomputed hash does not
// match the hash it is stored under (corruption or tampering).
var ErrIntegrity = errors.New("object integrity violation")

// Store is a content-addressed key/value store for serialized objects.
// Keys are identity hashes computed by the caller (see HashBlob,
// HashTree, HashCommit, HashTag); backends store bytes and never
// interpret them.
//
// Implementations: filestore (zstd loose objects), memstore, sqlstore.
type Store interface {
	// Put stores data under h. Writing the same hash twice is a no-op.
	Put(h Hash, objType ObjectType, data []byte) error

	// Get returns the type and raw content stored under h, or an error
	// wrapping ErrNotFound.
	Get(h Hash) (ObjectType, []byte, error)

	// Has reports whether an object with the given hash exists.
	Has(h Hash) bool
}

func typedGet(s Store, h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Get(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, want)
	}
	return data, nil
}

func integrityErr(h, recomputed Hash) error {
	return fmt.Errorf("object %s: recomputed hash %s: %w", h, recomputed, ErrIntegrity)
}

// WriteBlob stores raw content and returns its content hash.
func WriteBlob(s Store, data []byte) (Hash, error) {
	h := HashBlob(data)
	if err := s.Put(h, TypeBlob, MarshalBlob(&Blob{Data: data})); err != nil {
		return "", err
	}
	return h, nil
}

// ReadBlob reads blob content by hash, verifying it still hashes to h.
func ReadBlob(s Store, h Hash) ([]byte, error) {
	data, err := typedGet(s, h, TypeBlob)
	if err != nil {
		return nil, err
	}
	if recomputed := HashBlob(data); recomputed != h {
		return nil, integrityErr(h, recomputed)
	}
	return data, nil
}

// WriteTree serializes and stores a TreeObj, returning its hash.
// Entry names the tree format cannot round-trip are rejected before
// anything is written.
func WriteTree(s Store, tr *TreeObj) (Hash, error) {
	if err := validateTreeEntries(tr); err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	data := MarshalTree(tr)
	h := HashObject(TypeTree, data)
	if err := s.Put(h, TypeTree, data); err != nil {
		return "", err
	}
	return h, nil
}

// ReadTree reads and deserializes a TreeObj, verifying its hash.
func ReadTree(s Store, h Hash) (*TreeObj, error) {
	data, err := typedGet(s, h, TypeTree)
	if err != nil {
		return nil, err
	}
	tr, err := UnmarshalTree(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	if recomputed := HashTree(tr); recomputed != h {
		return nil, integrityErr(h, recomputed)
	}
	return tr, nil
}

// WriteCommit serializes and stores a CommitObj under its identity
// hash. The identity hash covers (parents, tree, timestamp, message)
// only, so the stored record carries metadata the key does not.
// Header fields containing line breaks are rejected before anything is
// written; they would make the stored record unreadable.
func WriteCommit(s Store, c *CommitObj) (Hash, error) {
	if err := validateCommitHeader(c); err != nil {
		return "", fmt.Errorf("write commit: %w", err)
	}
	h := HashCommit(c)
	if err := s.Put(h, TypeCommit, MarshalCommit(c)); err != nil {
		return "", err
	}
	return h, nil
}

// ReadCommit reads and deserializes a CommitObj, verifying that the
// decoded record still produces the identity hash it is stored under.
func ReadCommit(s Store, h Hash) (*CommitObj, error) {
	data, err := typedGet(s, h, TypeCommit)
	if err != nil {
		return nil, err
	}
	c, err := UnmarshalCommit(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	if recomputed := HashCommit(c); recomputed != h {
		return nil, integrityErr(h, recomputed)
	}
	return c, nil
}

// WriteTag serializes and stores an annotated TagObj.
func WriteTag(s Store, t *TagObj) (Hash, error) {
	if err := validateTagHeader(t); err != nil {
		return "", fmt.Errorf("write tag: %w", err)
	}
	data := MarshalTag(t)
	h := HashObject(TypeTag, data)
	if err := s.Put(h, TypeTag, data); err != nil {
		return "", err
	}
	return h, nil
}

// ReadTag reads and deserializes a TagObj, verifying its hash.
func ReadTag(s Store, h Hash) (*TagObj, error) {
	data, err := typedGet(s, h, TypeTag)
	if err != nil {
		return nil, err
	}
	t, err := UnmarshalTag(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", h, err)
	}
	if recomputed := HashTag(t); recomputed != h {
		return nil, integrityErr(h, recomputed)
	}
	return t, nil
}
