// Package repo implements the version-control core: an immutable
// commit graph over a content-addressed object store, mutable branch
// and tag references, diffing, and three-way merge.
package repo

import (
	"sync"

	"github.com/draftline/quill/pkg/object"
)

// Author identifies who produced a commit or tag.
type Author struct {
	ID    string
	Name  string
	Email string
}

// String renders the author in "name <email>" form.
func (a Author) String() string {
	return a.Name + " <" + a.Email + ">"
}

// Commit pairs a commit object with its identity hash.
type Commit struct {
	Hash object.Hash
	object.CommitObj
}

// Repository is an opened quill repository.
//
// Mutations (Commit, branch create/delete/switch, Tag, Merge) are
// serialized by a single writer lock. Reads operate over immutable
// content-addressed objects and take a fresh snapshot of the ref files
// instead of holding the lock.
type Repository struct {
	RootDir  string       // working directory root
	QuillDir string       // .quill/ directory
	Store    object.Store // content-addressed object store

	mu     sync.Mutex
	closer func() error
}

// Close releases backend resources (e.g. the SQLite handle). Safe on
// a repository opened over the default file backend.
func (r *Repository) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
