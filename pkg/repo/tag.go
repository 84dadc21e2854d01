package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/draftline/quill/pkg/object"
)

// Tag is an immutable name → commit pair. Annotated tags additionally
// store a tag object carrying tagger and message.
type Tag struct {
	Name      string
	Target    object.Hash // the tagged commit
	Ref       object.Hash // what refs/tags/<name> holds (tag object for annotated)
	Annotated bool
}

// Tag creates a tag pointing at the given commit. An empty message
// creates a lightweight ref; otherwise an annotated tag object is
// stored and the ref points at it. Fails with ErrNotFound when the
// commit is unknown and ErrDuplicateName when the tag exists.
func (r *Repository) Tag(commitHash object.Hash, name, message string, tagger Author) (*Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}

	if _, err := object.ReadCommit(r.Store, commitHash); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("tag: commit %s: %w", commitHash, ErrNotFound)
		}
		return nil, fmt.Errorf("tag: read commit: %w", err)
	}

	refValue := commitHash
	annotated := strings.TrimSpace(message) != ""
	if annotated {
		tagHash, err := object.WriteTag(r.Store, &object.TagObj{
			TargetHash: commitHash,
			Name:       name,
			Tagger:     tagger.String(),
			Timestamp:  time.Now().Unix(),
			Message:    message,
		})
		if err != nil {
			return nil, fmt.Errorf("tag: write tag object: %w", err)
		}
		refValue = tagHash
	}

	// CAS against the empty value doubles as the existence check.
	if err := r.updateRefCAS("refs/tags/"+name, refValue, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return nil, fmt.Errorf("tag: %q: %w", name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("tag %q: %w", name, err)
	}

	return &Tag{Name: name, Target: commitHash, Ref: refValue, Annotated: annotated}, nil
}

// ResolveTag resolves a tag name to the commit it tags, following an
// annotated tag object to its target.
func (r *Repository) ResolveTag(name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return nil, fmt.Errorf("resolve tag: %w", err)
	}

	refValue, err := r.ResolveRef("refs/tags/" + name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("resolve tag: %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("resolve tag %q: %w", name, err)
	}

	objType, _, err := r.Store.Get(refValue)
	if err != nil {
		return nil, fmt.Errorf("resolve tag %q: %w", name, err)
	}
	if objType == object.TypeTag {
		t, err := object.ReadTag(r.Store, refValue)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		return &Tag{Name: name, Target: t.TargetHash, Ref: refValue, Annotated: true}, nil
	}
	return &Tag{Name: name, Target: refValue, Ref: refValue}, nil
}

// DeleteTag removes a tag ref. Fails with ErrNotFound when absent.
func (r *Repository) DeleteTag(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.TrimSpace(name)
	if err := validateRefName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	refPath := filepath.Join(r.QuillDir, "refs", "tags", filepath.FromSlash(name))
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete tag: %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ListTags lists tag names sorted alphabetically.
func (r *Repository) ListTags() ([]string, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "tags/"))
	}
	sort.Strings(names)
	return names, nil
}
