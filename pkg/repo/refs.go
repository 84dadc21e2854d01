package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/draftline/quill/pkg/object"
)

// ErrRefCASMismatch reports a compare-and-swap ref update that found a
// different current value than expected.
var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// refPath returns the filesystem path of a "refs/..." name or "HEAD".
func (r *Repository) refPath(name string) string {
	return filepath.Join(r.QuillDir, filepath.FromSlash(name))
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. "HEAD" reads HEAD; a symbolic HEAD resolves its target ref.
//  2. Names starting with "refs/" read .quill/<name>.
//  3. Anything else tries "refs/heads/<name>".
//
// A missing ref fails with an error wrapping ErrNotFound.
func (r *Repository) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		// Detached HEAD: the value is a hash.
		return object.Hash(head), nil
	}

	var refPath string
	if strings.HasPrefix(name, "refs/") {
		refPath = filepath.Join(r.QuillDir, filepath.FromSlash(name))
	} else {
		refPath = filepath.Join(r.QuillDir, "refs", "heads", name)
	}

	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("resolve ref %q: %w", name, ErrNotFound)
		}
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	return object.Hash(strings.TrimRight(string(data), "\n")), nil
}

// ListRefs lists references under .quill/refs. Names are returned
// relative to the refs root, e.g. "heads/main", "tags/v1".
func (r *Repository) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := filepath.Join(r.QuillDir, "refs")
	dir := root
	if strings.TrimSpace(prefix) != "" {
		dir = filepath.Join(root, filepath.FromSlash(prefix))
	}

	refs := make(map[string]object.Hash)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		// Skip in-flight lock files.
		if strings.HasSuffix(path, ".lock") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		refs[filepath.ToSlash(rel)] = object.Hash(strings.TrimSpace(string(data)))
		return nil
	})
	if os.IsNotExist(err) {
		return refs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	return refs, nil
}

// updateRefCAS writes a hash to the named ref file under .quill/ using
// lockfile + rename atomic semantics, so a crash mid-write never leaves
// the ref pointing at partial content. The update only succeeds when
// the current ref value matches expectedOld ("" means the ref must not
// exist yet).
//
// Reflog append happens after the rename; the ref update stays
// committed even if the append fails.
func (r *Repository) updateRefCAS(name string, h, expectedOld object.Hash) error {
	refPath := filepath.Join(r.QuillDir, filepath.FromSlash(name))

	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if oldHash != expectedOld {
		return fmt.Errorf("update ref %q: %w (expected %q, found %q)",
			name, ErrRefCASMismatch, expectedOld, oldHash)
	}

	if _, err := lockFile.WriteString(string(h) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Sync(); err != nil {
		return fmt.Errorf("update ref %q: sync: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	if err := r.appendReflog(name, oldHash, h, "update"); err != nil {
		return fmt.Errorf("update ref %q: reflog: %w", name, err)
	}
	return nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}
