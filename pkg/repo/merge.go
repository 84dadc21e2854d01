package repo

import (
	"fmt"
	"time"

	"github.com/draftline/quill/pkg/diff"
	"github.com/draftline/quill/pkg/object"
)

// maxAncestryHops bounds each side of the merge-base search so a
// pathological (or corrupted) history cannot stall a merge.
const maxAncestryHops = 1000

// MergeResult is the outcome of a successful merge. Transient: never
// persisted.
type MergeResult struct {
	// Commit is the new merge commit, or the head the target branch
	// was advanced to (fast-forward) or already sat at (up to date).
	Commit object.Hash
	// FastForward marks a pointer-only merge: no commit was created.
	FastForward bool
	// UpToDate marks a no-op: the source is already contained in the
	// target.
	UpToDate bool
	// MergedPaths lists every path either side changed relative to
	// the merge base, sorted.
	MergedPaths []string
}

// FindMergeBase returns the nearest common ancestor of two commits: it
// collects a's ancestry into a visited set, then walks b's ancestry
// hash-by-hash until it lands on a visited hash. Both walks are
// bounded by maxAncestryHops (ErrAncestryBound beyond that). Fails
// with ErrNoCommonAncestor when the histories share no commit.
func (r *Repository) FindMergeBase(a, b object.Hash) (object.Hash, error) {
	if a == b {
		return a, nil
	}

	visited, err := r.collectAncestry(a)
	if err != nil {
		return "", err
	}

	queue := []object.Hash{b}
	seen := map[object.Hash]struct{}{b: {}}
	hops := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if hops++; hops > maxAncestryHops {
			return "", fmt.Errorf("find merge base: %w (%d hops)", ErrAncestryBound, maxAncestryHops)
		}
		if _, ok := visited[cur]; ok {
			return cur, nil
		}

		c, err := object.ReadCommit(r.Store, cur)
		if err != nil {
			return "", fmt.Errorf("find merge base: read %s: %w", cur, err)
		}
		for _, p := range c.Parents {
			if p == "" {
				continue
			}
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			queue = append(queue, p)
		}
	}

	return "", fmt.Errorf("find merge base: %w", ErrNoCommonAncestor)
}

// collectAncestry walks every parent link reachable from start and
// returns the visited set, start included.
func (r *Repository) collectAncestry(start object.Hash) (map[object.Hash]struct{}, error) {
	visited := map[object.Hash]struct{}{start: {}}
	queue := []object.Hash{start}
	hops := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if hops++; hops > maxAncestryHops {
			return nil, fmt.Errorf("collect ancestry: %w (%d hops)", ErrAncestryBound, maxAncestryHops)
		}

		c, err := object.ReadCommit(r.Store, cur)
		if err != nil {
			return nil, fmt.Errorf("collect ancestry: read %s: %w", cur, err)
		}
		for _, p := range c.Parents {
			if p == "" {
				continue
			}
			if _, dup := visited[p]; dup {
				continue
			}
			visited[p] = struct{}{}
			queue = append(queue, p)
		}
	}
	return visited, nil
}

// Merge merges the source branch into the target branch.
//
// Per invocation: find the merge base, detect conflicts by three-way
// hash comparison, and either fail with a *MergeConflictError (leaving
// the repository untouched) or synthesize a merge commit with parents
// [targetHead, sourceHead] and advance the target branch. When one
// head is already an ancestor of the other, the merge degenerates to a
// pointer move (fast-forward) or a no-op.
func (r *Repository) Merge(target, source string, author Author) (*MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	targetHead, err := r.ResolveRef("refs/heads/" + target)
	if err != nil {
		return nil, fmt.Errorf("merge: target branch %q: %w", target, err)
	}
	sourceHead, err := r.ResolveRef("refs/heads/" + source)
	if err != nil {
		return nil, fmt.Errorf("merge: source branch %q: %w", source, err)
	}

	if targetHead == sourceHead {
		return &MergeResult{Commit: targetHead, UpToDate: true}, nil
	}

	base, err := r.FindMergeBase(targetHead, sourceHead)
	if err != nil {
		return nil, fmt.Errorf("merge %q into %q: %w", source, target, err)
	}

	// Source already contained in target: nothing to do.
	if base == sourceHead {
		return &MergeResult{Commit: targetHead, UpToDate: true}, nil
	}
	// Target is an ancestor of source: move the pointer.
	if base == targetHead {
		if err := r.updateRefCAS("refs/heads/"+target, sourceHead, targetHead); err != nil {
			return nil, fmt.Errorf("merge: fast-forward %q: %w", target, err)
		}
		return &MergeResult{Commit: sourceHead, FastForward: true}, nil
	}

	baseFiles, err := r.commitFiles(base)
	if err != nil {
		return nil, fmt.Errorf("merge: base tree: %w", err)
	}
	targetFiles, err := r.commitFiles(targetHead)
	if err != nil {
		return nil, fmt.Errorf("merge: target tree: %w", err)
	}
	sourceFiles, err := r.commitFiles(sourceHead)
	if err != nil {
		return nil, fmt.Errorf("merge: source tree: %w", err)
	}

	union := make(map[string]struct{}, len(targetFiles)+len(sourceFiles))
	for p := range baseFiles {
		union[p] = struct{}{}
	}
	for p := range targetFiles {
		union[p] = struct{}{}
	}
	for p := range sourceFiles {
		union[p] = struct{}{}
	}

	// Three-way resolution per path. Absence counts as a change, so a
	// delete-vs-modify disagreement is a conflict like any other.
	merged := make(map[string]blobRef)
	var (
		conflicts   []Conflict
		mergedPaths []string
	)
	for _, p := range sortedPaths(union) {
		baseHash := baseFiles[p].ContentHash
		targetEntry, inTarget := targetFiles[p]
		sourceEntry, inSource := sourceFiles[p]

		// Zero-value hashes stand in for absent entries, so an
		// addition or deletion reads as a change like any edit.
		targetChanged := targetEntry.ContentHash != baseHash
		sourceChanged := sourceEntry.ContentHash != baseHash

		if targetChanged || sourceChanged {
			mergedPaths = append(mergedPaths, p)
		}

		switch {
		case targetChanged && sourceChanged && targetEntry.ContentHash != sourceEntry.ContentHash:
			// Both diverged and disagree.
			conflicts = append(conflicts, Conflict{
				Path:       p,
				BaseHash:   baseHash,
				TargetHash: targetEntry.ContentHash,
				SourceHash: sourceEntry.ContentHash,
			})
		case sourceChanged && !targetChanged:
			// Only source changed: take source (a deletion omits the path).
			if inSource {
				merged[p] = blobRef{hash: sourceEntry.ContentHash, size: sourceEntry.Size}
			}
		default:
			// Target changed, both agree, or nobody changed: keep
			// target's version (a deletion omits the path).
			if inTarget {
				merged[p] = blobRef{hash: targetEntry.ContentHash, size: targetEntry.Size}
			}
		}
	}

	if len(conflicts) > 0 {
		// No commit, no ref move: repository state is unchanged.
		return nil, &MergeConflictError{Target: target, Source: source, Conflicts: conflicts}
	}

	treeHash, err := buildTree(r.Store, merged)
	if err != nil {
		return nil, fmt.Errorf("merge: build tree: %w", err)
	}

	filesChanged, additions, deletions, err := r.mergeStats(targetFiles, merged)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	mergeCommit := &object.CommitObj{
		TreeHash:     treeHash,
		Parents:      []object.Hash{targetHead, sourceHead},
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorEmail:  author.Email,
		Message:      fmt.Sprintf("Merge branch '%s' into '%s'", source, target),
		Timestamp:    time.Now().Unix(),
		FilesChanged: filesChanged,
		Additions:    additions,
		Deletions:    deletions,
	}
	mergeHash, err := object.WriteCommit(r.Store, mergeCommit)
	if err != nil {
		return nil, fmt.Errorf("merge: write commit: %w", err)
	}

	if err := r.updateRefCAS("refs/heads/"+target, mergeHash, targetHead); err != nil {
		return nil, fmt.Errorf("merge: advance %q: %w", target, err)
	}

	return &MergeResult{Commit: mergeHash, MergedPaths: mergedPaths}, nil
}

// mergeStats compares the merged snapshot against the target head's
// tree using the same simplified line counts as Commit.
func (r *Repository) mergeStats(targetFiles map[string]TreeFileEntry, merged map[string]blobRef) (filesChanged, additions, deletions int, err error) {
	for p, ref := range merged {
		prev, existed := targetFiles[p]
		if existed && prev.ContentHash == ref.hash {
			continue
		}
		filesChanged++
		data, err := object.ReadBlob(r.Store, ref.hash)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("read merged blob %q: %w", p, err)
		}
		additions += diff.CountNonEmptyLines(data)
	}
	for p, prev := range targetFiles {
		if _, kept := merged[p]; kept {
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
