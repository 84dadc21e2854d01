package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/draftline/quill/pkg/object"
	"github.com/draftline/quill/pkg/object/filestore"
	"github.com/draftline/quill/pkg/object/sqlstore"
)

const (
	// DefaultBranchName is the branch Init creates and points HEAD at.
	DefaultBranchName = "main"

	// Storage backends selectable at Init time.
	StorageFile   = "file"
	StorageSqlite = "sqlite"

	// objectCacheSize bounds the read-through LRU in front of the store.
	objectCacheSize = 1024
)

// InitOptions adjusts repository creation.
type InitOptions struct {
	// DefaultBranch overrides the name of the branch Init creates.
	DefaultBranch string
	// Storage selects the object backend: StorageFile (default) or
	// StorageSqlite.
	Storage string
	// Timestamp overrides the root commit time (zero means now).
	Timestamp time.Time
}

// Init creates a new quill repository at path: the .quill/ directory,
// an empty tree, a root commit authored by author, the default branch
// pointing at it, and a symbolic HEAD. Calling Init on an already
// initialized repository fails with ErrAlreadyInitialized.
func Init(path, projectID string, author Author, opts *InitOptions) (*Repository, *Commit, error) {
	if opts == nil {
		opts = &InitOptions{}
	}
	branch := opts.DefaultBranch
	if branch == "" {
		branch = DefaultBranchName
	}
	storage := opts.Storage
	if storage == "" {
		storage = StorageFile
	}
	if storage != StorageFile && storage != StorageSqlite {
		return nil, nil, fmt.Errorf("init: unknown storage backend %q", storage)
	}

	quillDir := filepath.Join(path, ".quill")
	if _, err := os.Stat(quillDir); err == nil {
		return nil, nil, fmt.Errorf("init: repository at %s: %w", quillDir, ErrAlreadyInitialized)
	}

	dirs := []string{
		filepath.Join(quillDir, "objects"),
		filepath.Join(quillDir, "refs", "heads"),
		filepath.Join(quillDir, "refs", "tags"),
		filepath.Join(quillDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	r := &Repository{RootDir: path, QuillDir: quillDir}
	store, closer, err := openStore(quillDir, storage)
	if err != nil {
		return nil, nil, fmt.Errorf("init: %w", err)
	}
	r.Store = store
	r.closer = closer

	cfg := &Config{
		Project: ProjectConfig{
			ID:            projectID,
			DefaultBranch: branch,
			Storage:       storage,
		},
		Branches: map[string]BranchConfig{
			branch: {Protected: true, CreatedBy: author.ID},
		},
	}
	if err := r.WriteConfig(cfg); err != nil {
		return nil, nil, fmt.Errorf("init: %w", err)
	}

	// Root commit over an empty tree.
	treeHash, err := object.WriteTree(r.Store, &object.TreeObj{})
	if err != nil {
		return nil, nil, fmt.Errorf("init: write empty tree: %w", err)
	}
	ts := opts.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	root := &object.CommitObj{
		TreeHash:    treeHash,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		Message:     "Initialize repository",
		Timestamp:   ts.Unix(),
	}
	rootHash, err := object.WriteCommit(r.Store, root)
	if err != nil {
		return nil, nil, fmt.Errorf("init: write root commit: %w", err)
	}

	if err := r.updateRefCAS("refs/heads/"+branch, rootHash, ""); err != nil {
		return nil, nil, fmt.Errorf("init: point %s at root: %w", branch, err)
	}
	if err := r.writeHeadSymref(branch); err != nil {
		return nil, nil, fmt.Errorf("init: %w", err)
	}

	return r, &Commit{Hash: rootHash, CommitObj: *root}, nil
}

// Open searches upward from path for a .quill/ directory and opens the
// repository, reloading its persisted refs and config.
func Open(path string) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		quillDir := filepath.Join(cur, ".quill")
		info, err := os.Stat(quillDir)
		if err == nil && info.IsDir() {
			r := &Repository{RootDir: cur, QuillDir: quillDir}
			cfg, err := r.ReadConfig()
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			store, closer, err := openStore(quillDir, cfg.Project.Storage)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			r.Store = store
			r.closer = closer
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a quill repository (or any parent up to /)")
		}
		cur = parent
	}
}

func openStore(quillDir, storage string) (object.Store, func() error, error) {
	var (
		backend object.Store
		closer  func() error
	)
	switch storage {
	case StorageFile, "":
		backend = filestore.New(quillDir)
	case StorageSqlite:
		s, db, err := sqlstore.Open(filepath.Join(quillDir, "objects.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		backend = s
		closer = db.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", storage)
	}

	cached, err := object.NewCachedStore(backend, objectCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("object cache: %w", err)
	}
	return cached, closer, nil
}

// Head reads .quill/HEAD. If the content starts with "ref: ", it
// returns the ref path (e.g. "refs/heads/main"). Otherwise it returns
// the raw content as a detached hash string.
func (r *Repository) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.QuillDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// writeHeadSymref atomically points HEAD at refs/heads/<branch>.
func (r *Repository) writeHeadSymref(branch string) error {
	headPath := filepath.Join(r.QuillDir, "HEAD")

	tmp, err := os.CreateTemp(r.QuillDir, ".head-tmp-*")
	if err != nil {
		return fmt.Errorf("write HEAD: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString("ref: refs/heads/" + branch + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write HEAD: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write HEAD: close: %w", err)
	}
	if err := os.Rename(tmpName, headPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write HEAD: rename: %w", err)
	}
	return nil
}
