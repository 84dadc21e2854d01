package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/draftline/quill/pkg/object"
)

// Branch is a mutable named pointer to a commit, plus its metadata.
type Branch struct {
	Name        string
	Head        object.Hash
	IsDefault   bool
	Protected   bool
	Description string
}

// BranchOptions carries optional metadata for CreateBranch.
type BranchOptions struct {
	Protected   bool
	Description string
	CreatedBy   string
}

// CreateBranch creates a branch pointing at the given commit. An empty
// hash means the current HEAD target. Fails with ErrDuplicateName when
// the branch exists and ErrNotFound when no commit is resolvable.
func (r *Repository) CreateBranch(name string, at object.Hash, opts *BranchOptions) (*Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateRefName(name); err != nil {
		return nil, fmt.Errorf("create branch: %w", err)
	}

	if at == "" {
		h, err := r.ResolveRef("HEAD")
		if err != nil || h == "" {
			return nil, fmt.Errorf("create branch %q: no commit resolvable: %w", name, ErrNotFound)
		}
		at = h
	}
	if _, err := object.ReadCommit(r.Store, at); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("create branch %q: commit %s: %w", name, at, ErrNotFound)
		}
		return nil, fmt.Errorf("create branch %q: %w", name, err)
	}

	// CAS against the empty value doubles as the existence check.
	if err := r.updateRefCAS("refs/heads/"+name, at, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return nil, fmt.Errorf("create branch: %q: %w", name, ErrDuplicateName)
		}
		return nil, fmt.Errorf("create branch %q: %w", name, err)
	}

	branch := &Branch{Name: name, Head: at}
	if opts != nil {
		branch.Protected = opts.Protected
		branch.Description = opts.Description
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("create branch %q: %w", name, err)
	}
	if opts != nil && (opts.Protected || opts.Description != "" || opts.CreatedBy != "") {
		cfg.Branches[name] = BranchConfig{
			Protected:   opts.Protected,
			Description: opts.Description,
			CreatedBy:   opts.CreatedBy,
		}
		if err := r.WriteConfig(cfg); err != nil {
			return nil, fmt.Errorf("create branch %q: %w", name, err)
		}
	}
	branch.IsDefault = name == cfg.Project.DefaultBranch

	return branch, nil
}

// DeleteBranch removes a branch ref. The default branch, protected
// branches, and the currently checked-out branch cannot be deleted
// (ErrInvariantViolation); a missing branch fails with ErrNotFound.
func (r *Repository) DeleteBranch(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := r.ReadConfig()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if name == cfg.Project.DefaultBranch {
		return fmt.Errorf("delete branch: %q is the default branch: %w", name, ErrInvariantViolation)
	}
	if cfg.Branches[name].Protected {
		return fmt.Errorf("delete branch: %q is protected: %w", name, ErrInvariantViolation)
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if current == name {
		return fmt.Errorf("delete branch: %q is checked out: %w", name, ErrInvariantViolation)
	}

	refPath := filepath.Join(r.QuillDir, "refs", "heads", name)
	if err := os.Remove(refPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete branch: %q: %w", name, ErrNotFound)
		}
		return fmt.Errorf("delete branch %q: %w", name, err)
	}

	if _, ok := cfg.Branches[name]; ok {
		delete(cfg.Branches, name)
		if err := r.WriteConfig(cfg); err != nil {
			return fmt.Errorf("delete branch %q: %w", name, err)
		}
	}
	return nil
}

// SwitchBranch repoints the symbolic HEAD at the named branch. A pure
// pointer update: no commits are rewritten. Fails with ErrNotFound
// when the branch does not exist.
func (r *Repository) SwitchBranch(name string) (*Branch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, err := r.ResolveRef("refs/heads/" + name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("switch branch: %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("switch branch %q: %w", name, err)
	}

	previous, _ := r.ResolveRef("HEAD")
	if err := r.writeHeadSymref(name); err != nil {
		return nil, fmt.Errorf("switch branch %q: %w", name, err)
	}
	if err := r.appendReflog("HEAD", previous, target, "switch to "+name); err != nil {
		return nil, fmt.Errorf("switch branch %q: %w", name, err)
	}

	return r.branchByName(name, target)
}

// ListBranches returns all branches sorted by name, each carrying its
// head hash and metadata. The listing is a copy-on-read snapshot of
// the ref files: it never blocks writers.
func (r *Repository) ListBranches() ([]*Branch, error) {
	refs, err := r.ListRefs("heads")
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "heads/"))
	}
	sort.Strings(names)

	branches := make([]*Branch, 0, len(names))
	for _, name := range names {
		meta := cfg.Branches[name]
		branches = append(branches, &Branch{
			Name:        name,
			Head:        refs["heads/"+name],
			IsDefault:   name == cfg.Project.DefaultBranch,
			Protected:   meta.Protected,
			Description: meta.Description,
		})
	}
	return branches, nil
}

// CurrentBranch returns the branch name HEAD points at, or "" when
// HEAD is detached.
func (r *Repository) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}

	const prefix = "refs/heads/"
	if strings.HasPrefix(head, prefix) {
		return strings.TrimPrefix(head, prefix), nil
	}
	return "", nil
}

// GetBranch returns a single branch by name, or ErrNotFound.
func (r *Repository) GetBranch(name string) (*Branch, error) {
	head, err := r.ResolveRef("refs/heads/" + name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("branch %q: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return r.branchByName(name, head)
}

func (r *Repository) branchByName(name string, head object.Hash) (*Branch, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	meta := cfg.Branches[name]
	return &Branch{
		Name:        name,
		Head:        head,
		IsDefault:   name == cfg.Project.DefaultBranch,
		Protected:   meta.Protected,
		Description: meta.Description,
	}, nil
}

// validateRefName rejects names the ref layout cannot represent.
func validateRefName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf("invalid name %q", name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("invalid name %q", name)
	}
	// .lock would collide with the ref lockfile suffix.
	if strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("invalid name %q", name)
	}
	if strings.ContainsAny(name, " \t\n\r") {
		return fmt.Errorf("invalid name %q", name)
	}
	return nil
}
