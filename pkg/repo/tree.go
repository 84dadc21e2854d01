package repo

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/draftline/quill/pkg/object"
)

// TreeFileEntry represents a single file in a flattened tree.
type TreeFileEntry struct {
	Path        string
	ContentHash object.Hash
	Size        int64
}

// blobRef is the stored identity of one file's content.
type blobRef struct {
	hash object.Hash
	size int64
}

// blobWriteConcurrency bounds the parallel blob hashing fan-out.
const blobWriteConcurrency = 8

// writeBlobs stores every value of the content map as a blob,
// hashing and writing in parallel, and returns path → blob identity.
func writeBlobs(s object.Store, content map[string][]byte) (map[string]blobRef, error) {
	var (
		mu   sync.Mutex
		refs = make(map[string]blobRef, len(content))
	)

	var g errgroup.Group
	g.SetLimit(blobWriteConcurrency)
	for p, data := range content {
		p, data := p, data
		g.Go(func() error {
			h, err := object.WriteBlob(s, data)
			if err != nil {
				return fmt.Errorf("write blob %q: %w", p, err)
			}
			mu.Lock()
			refs[p] = blobRef{hash: h, size: int64(len(data))}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// buildTree converts a flat path → blob map into hierarchical TreeObj
// objects, writing each subtree to the store and returning the root
// hash. Paths use forward slashes (e.g. "scenes/intro.md").
func buildTree(s object.Store, refs map[string]blobRef) (object.Hash, error) {
	return buildTreeDir(s, refs, "")
}

func buildTreeDir(s object.Store, refs map[string]blobRef, prefix string) (object.Hash, error) {
	// Collect direct children: files and subdirectory names.
	files := make(map[string]blobRef) // name -> blob
	subdirs := make(map[string]struct{})

	for p, ref := range refs {
		var rel string
		if prefix == "" {
			rel = p
		} else {
			if !strings.HasPrefix(p, prefix+"/") {
				continue
			}
			rel = p[len(prefix)+1:]
		}

		slash := strings.IndexByte(rel, '/')
		if slash < 0 {
			files[rel] = ref
		} else {
			subdirs[rel[:slash]] = struct{}{}
		}
	}

	names := make([]string, 0, len(files)+len(subdirs))
	for name := range files {
		names = append(names, name)
	}
	for name := range subdirs {
		// A name cannot be both a file and a directory.
		if _, isFile := files[name]; isFile {
			return "", fmt.Errorf("build tree: %q is both a file and a directory", path.Join(prefix, name))
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []object.TreeEntry
	for _, name := range names {
		if ref, isFile := files[name]; isFile {
			entries = append(entries, object.TreeEntry{
				Name:        name,
				ContentHash: ref.hash,
				Size:        ref.size,
			})
		} else {
			childPrefix := name
			if prefix != "" {
				childPrefix = prefix + "/" + name
			}
			subHash, err := buildTreeDir(s, refs, childPrefix)
			if err != nil {
				return "", err
			}
			entries = append(entries, object.TreeEntry{
				Name:        name,
				IsDir:       true,
				SubtreeHash: subHash,
			})
		}
	}

	h, err := object.WriteTree(s, &object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("write tree (prefix=%q): %w", prefix, err)
	}
	return h, nil
}

// FlattenTree walks a tree object recursively, returning all file
// entries with their full forward-slash paths, sorted by path.
func (r *Repository) FlattenTree(h object.Hash) ([]TreeFileEntry, error) {
	return flattenTreeRec(r.Store, h, "")
}

func flattenTreeRec(s object.Store, h object.Hash, prefix string) ([]TreeFileEntry, error) {
	treeObj, err := object.ReadTree(s, h)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: read %s: %w", h, err)
	}

	var result []TreeFileEntry
	for _, entry := range treeObj.Entries {
		fullPath := entry.Name
		if prefix != "" {
			fullPath = path.Join(prefix, entry.Name)
		}

		if entry.IsDir {
			sub, err := flattenTreeRec(s, entry.SubtreeHash, fullPath)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, TreeFileEntry{
				Path:        fullPath,
				ContentHash: entry.ContentHash,
				Size:        entry.Size,
			})
		}
	}
	return result, nil
}

// indexByPath creates a map from file path to TreeFileEntry.
func indexByPath(entries []TreeFileEntry) map[string]TreeFileEntry {
	m := make(map[string]TreeFileEntry, len(entries))
	for _, e := range entries {
		m[e.Path] = e
	}
	return m
}

// validatePath rejects paths the tree model cannot represent.
func validatePath(p string) error {
	if p == "" {
		return fmt.Errorf("empty path")
	}
	if strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") {
		return fmt.Errorf("invalid path %q", p)
	}
	if strings.Contains(p, "\\") {
		return fmt.Errorf("invalid path %q (use forward slashes)", p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("invalid path %q", p)
		}
	}
	// Spaces are allowed; control characters would break the
	// line-oriented tree serialization.
	for _, c := range p {
		if c < 0x20 || c == 0x7f {
			return fmt.Errorf("invalid path %q (control character)", p)
		}
	}
	return nil
}
