package repo

import (
	"errors"
	"fmt"

	"github.com/draftline/quill/pkg/object"
)

var (
	// ErrNotFound reports an unknown commit, branch, or tag reference.
	// Aliased from the object package so callers can errors.Is against
	// one sentinel regardless of which layer detected the miss.
	ErrNotFound = object.ErrNotFound

	// ErrDuplicateName reports a branch or tag name collision.
	ErrDuplicateName = errors.New("name already exists")

	// ErrInvariantViolation reports an operation the object model
	// forbids, such as deleting the default branch.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrAlreadyInitialized reports Init on an existing repository.
	ErrAlreadyInitialized = errors.New("repository already initialized")

	// ErrNoCommonAncestor reports a merge between histories that share
	// no commit.
	ErrNoCommonAncestor = errors.New("no common ancestor")

	// ErrMergeConflict is the sentinel every *MergeConflictError
	// matches via errors.Is.
	ErrMergeConflict = errors.New("merge conflict")

	// ErrAncestryBound reports an ancestry walk that exceeded its hop
	// budget before completing.
	ErrAncestryBound = errors.New("ancestry traversal exceeded hop bound")
)

// Conflict describes one path both branches changed, with disagreeing
// results, relative to their merge base.
type Conflict struct {
	Path       string
	BaseHash   object.Hash
	TargetHash object.Hash
	SourceHash object.Hash
}

// MergeConflictError carries the full conflict list of a failed merge.
// The repository is left untouched when this error is returned.
type MergeConflictError struct {
	Target    string
	Source    string
	Conflicts []Conflict
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge %q into %q: %d conflicting path(s)", e.Source, e.Target, len(e.Conflicts))
}

func (e *MergeConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}
