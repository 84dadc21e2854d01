package repo

import (
	"errors"
	"fmt"

	"github.com/draftline/quill/pkg/diff"
	"github.com/draftline/quill/pkg/object"
)

// Diff computes the difference between two commits' trees: every path
// present in either tree is classified added, deleted, or modified,
// with a line-level unified diff per text file. Paths whose content
// hash matches on both sides are omitted, so Diff(X, X) is empty.
// Files are sorted by path. Fails with ErrNotFound when either commit
// is unknown.
//
// Diff is read-only over immutable objects and takes no lock.
func (r *Repository) Diff(base, compare object.Hash) (*diff.Result, error) {
	baseFiles, err := r.commitFiles(base)
	if err != nil {
		return nil, fmt.Errorf("diff: base %s: %w", base, err)
	}
	compareFiles, err := r.commitFiles(compare)
	if err != nil {
		return nil, fmt.Errorf("diff: compare %s: %w", compare, err)
	}

	result := &diff.Result{BaseCommit: base, CompareCommit: compare}

	union := make(map[string]struct{}, len(baseFiles)+len(compareFiles))
	for p := range baseFiles {
		union[p] = struct{}{}
	}
	for p := range compareFiles {
		union[p] = struct{}{}
	}

	for _, p := range sortedPaths(union) {
		b, inBase := baseFiles[p]
		c, inCompare := compareFiles[p]

		var fd diff.FileDiff
		switch {
		case inBase && inCompare && b.ContentHash == c.ContentHash:
			continue
		case inBase && inCompare:
			fd = diff.FileDiff{Path: p, Status: diff.StatusModified, BaseHash: b.ContentHash, CompHash: c.ContentHash}
		case inCompare:
			fd = diff.FileDiff{Path: p, Status: diff.StatusAdded, CompHash: c.ContentHash}
		default:
			fd = diff.FileDiff{Path: p, Status: diff.StatusDeleted, BaseHash: b.ContentHash}
		}

		var baseData, compData []byte
		if inBase {
			baseData, err = object.ReadBlob(r.Store, b.ContentHash)
			if err != nil {
				return nil, fmt.Errorf("diff: read %q: %w", p, err)
			}
		}
		if inCompare {
			compData, err = object.ReadBlob(r.Store, c.ContentHash)
			if err != nil {
				return nil, fmt.Errorf("diff: read %q: %w", p, err)
			}
		}

		fd.Hunks, fd.Additions, fd.Deletions, fd.IsBinary = diff.Content(baseData, compData)
		result.Additions += fd.Additions
		result.Deletions += fd.Deletions
		result.Files = append(result.Files, fd)
	}

	return result, nil
}

// commitFiles resolves a commit's tree to its flattened path map.
func (r *Repository) commitFiles(h object.Hash) (map[string]TreeFileEntry, error) {
	c, err := object.ReadCommit(r.Store, h)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	flat, err := r.FlattenTree(c.TreeHash)
	if err != nil {
		return nil, err
	}
	return indexByPath(flat), nil
}
