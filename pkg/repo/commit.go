package repo

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/draftline/quill/pkg/diff"
	"github.com/draftline/quill/pkg/object"
)

// CommitSigner signs canonical commit payload bytes and returns an
// encoded signature string persisted in the commit record.
type CommitSigner func(payload []byte) (string, error)

// CommitOptions adjusts commit creation.
type CommitOptions struct {
	// Parent pins the parent commit explicitly. Empty means the
	// current HEAD target. An unknown hash fails with ErrNotFound.
	Parent object.Hash
	// Domain labels the commit (e.g. a content category).
	Domain string
	// Timestamp overrides the commit time (zero means now). Part of
	// commit identity: equal inputs with equal timestamps produce the
	// same hash.
	Timestamp time.Time
	// Signer, when set, signs the canonical identity payload.
	Signer CommitSigner
}

// Commit records a full snapshot of the supplied content as a new
// commit and advances the checked-out branch to it.
//
// The content map is path → raw bytes; the resulting tree is built
// from the map alone. Stats follow the simplified line-count rule:
// additions = non-empty lines across added and modified files,
// deletions = non-empty lines of files dropped relative to the parent,
// filesChanged = number of added + modified + deleted paths.
func (r *Repository) Commit(author Author, message string, content map[string][]byte, opts *CommitOptions) (*Commit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if opts == nil {
		opts = &CommitOptions{}
	}
	for p := range content {
		if err := validatePath(p); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
	}

	// Resolve the parent: explicit hash or the current HEAD target.
	parent := opts.Parent
	if parent != "" {
		if _, err := object.ReadCommit(r.Store, parent); err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("commit: parent %s: %w", parent, ErrNotFound)
			}
			return nil, fmt.Errorf("commit: read parent: %w", err)
		}
	} else {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, fmt.Errorf("commit: resolve HEAD: %w", err)
		}
		parent = h
	}

	// Store blobs and build the snapshot tree.
	refs, err := writeBlobs(r.Store, content)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	treeHash, err := buildTree(r.Store, refs)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	filesChanged, additions, deletions, err := r.snapshotStats(parent, content, refs)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	commitObj := &object.CommitObj{
		TreeHash:     treeHash,
		Parents:      []object.Hash{parent},
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorEmail:  author.Email,
		Message:      message,
		Timestamp:    ts.Unix(),
		Domain:       opts.Domain,
		FilesChanged: filesChanged,
		Additions:    additions,
		Deletions:    deletions,
	}
	if opts.Signer != nil {
		signature, err := opts.Signer(object.CommitIdentityPayload(commitObj))
		if err != nil {
			return nil, fmt.Errorf("commit: sign: %w", err)
		}
		commitObj.Signature = signature
	}

	commitHash, err := object.WriteCommit(r.Store, commitObj)
	if err != nil {
		return nil, fmt.Errorf("commit: write: %w", err)
	}

	// Advance the checked-out branch (or a detached HEAD).
	if err := r.advanceHead(commitHash); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &Commit{Hash: commitHash, CommitObj: *commitObj}, nil
}

// advanceHead moves the checked-out branch ref (or a detached HEAD) to
// the new commit with a CAS against its current value.
func (r *Repository) advanceHead(commitHash object.Hash) error {
	head, err := r.Head()
	if err != nil {
		return fmt.Errorf("read HEAD: %w", err)
	}
	if strings.HasPrefix(head, "refs/") {
		current, err := readRefHash(r.refPath(head))
		if err != nil {
			return fmt.Errorf("read ref %q: %w", head, err)
		}
		if err := r.updateRefCAS(head, commitHash, current); err != nil {
			return fmt.Errorf("update ref %q: %w", head, err)
		}
		return nil
	}
	if err := r.updateRefCAS("HEAD", commitHash, object.Hash(strings.TrimSpace(head))); err != nil {
		return fmt.Errorf("update detached HEAD: %w", err)
	}
	return nil
}

// snapshotStats compares the new snapshot against the parent's tree
// and produces the simplified line-count stats.
func (r *Repository) snapshotStats(parent object.Hash, content map[string][]byte, refs map[string]blobRef) (filesChanged, additions, deletions int, err error) {
	parentFiles := make(map[string]TreeFileEntry)
	if parent != "" {
		parentCommit, err := object.ReadCommit(r.Store, parent)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("read parent commit: %w", err)
		}
		flat, err := r.FlattenTree(parentCommit.TreeHash)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("flatten parent tree: %w", err)
		}
		parentFiles = indexByPath(flat)
	}

	for p, data := range content {
		prev, existed := parentFiles[p]
		if existed && prev.ContentHash == refs[p].hash {
			continue
		}
		filesChanged++
		additions += diff.CountNonEmptyLines(data)
	}
	for p, prev := range parentFiles {
		if _, kept := content[p]; kept {
			continue
		}
		filesChanged++
		data, err := object.ReadBlob(r.Store, prev.ContentHash)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("read removed blob %q: %w", p, err)
		}
		deletions += diff.CountNonEmptyLines(data)
	}
	return filesChanged, additions, deletions, nil
}

// GetCommit looks up a commit by hash. A miss returns (nil, nil):
// absence is not an error here. Corruption still surfaces as an error
// wrapping object.ErrIntegrity.
func (r *Repository) GetCommit(h object.Hash) (*Commit, error) {
	c, err := object.ReadCommit(r.Store, h)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Commit{Hash: h, CommitObj: *c}, nil
}

// commitLoader resolves a hash to its decoded commit record.
type commitLoader func(object.Hash) (*object.CommitObj, error)

// GetCommitHistory walks first-parent links from start (empty means
// the current HEAD target), returning up to limit commits newest
// first. A visited set guarantees termination even if the graph
// presented by the loader repeats a hash: the walk stops at the first
// repeat.
func (r *Repository) GetCommitHistory(start object.Hash, limit int) ([]*Commit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if start == "" {
		h, err := r.ResolveRef("HEAD")
		if err != nil {
			return nil, fmt.Errorf("history: resolve HEAD: %w", err)
		}
		start = h
	}
	return walkFirstParent(func(h object.Hash) (*object.CommitObj, error) {
		return object.ReadCommit(r.Store, h)
	}, start, limit)
}

func walkFirstParent(load commitLoader, start object.Hash, limit int) ([]*Commit, error) {
	visited := make(map[object.Hash]struct{})
	var commits []*Commit
	current := start

	for len(commits) < limit {
		if _, seen := visited[current]; seen {
			break
		}
		visited[current] = struct{}{}

		c, err := load(current)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("history: read commit %s: %w", current, err)
		}
		commits = append(commits, &Commit{Hash: current, CommitObj: *c})

		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}

	return commits, nil
}

// sortedPaths returns the content map's keys in path order.
func sortedPaths[V any](m map[string]V) []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
