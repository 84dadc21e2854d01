// Package filestore implements the loose-object backend: one
// zstd-compressed file per object, fanned out by hash prefix.
package filestore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/draftline/quill/pkg/object"
)

var _ object.Store = (*Store)(nil)

// Store keeps objects under root with a 2-character fan-out layout:
// objects/ab/cdef0123... Each file holds a zstd-compressed
// "type len\0content" envelope.
type Store struct {
	root string
}

// New creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) objectPath(h object.Hash) string {
	return filepath.Join(s.root, "objects", string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h object.Hash) bool {
	if len(h) < 3 {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Put stores an object under h. Writes are atomic: the compressed
// envelope is written to a temp file and renamed into place.
func (s *Store) Put(h object.Hash, objType object.ObjectType, data []byte) error {
	if len(h) < 3 {
		return fmt.Errorf("object put: invalid hash %q", h)
	}

	// Fast path: already exists.
	if s.Has(h) {
		return nil
	}

	envelope := fmt.Sprintf("%s %d\x00", objType, len(data))
	raw := append([]byte(envelope), data...)
	compressed, err := compressZstd(raw)
	if err != nil {
		return fmt.Errorf("object put %s: compress: %w", h, err)
	}

	dir := filepath.Join(s.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object put mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object put tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object put write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object put close: %w", err)
	}
	if err := os.Rename(tmpName, s.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object put rename: %w", err)
	}
	return nil
}

// Get retrieves an object by hash, returning its type and raw content.
func (s *Store) Get(h object.Hash) (object.ObjectType, []byte, error) {
	if len(h) < 3 {
		return "", nil, fmt.Errorf("object get %q: %w", h, object.ErrNotFound)
	}
	compressed, err := os.ReadFile(s.objectPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("object get %s: %w", h, object.ErrNotFound)
		}
		return "", nil, fmt.Errorf("object get %s: %w", h, err)
	}

	raw, err := decompressZstd(compressed)
	if err != nil {
		return "", nil, fmt.Errorf("object get %s: decompress: %w", h, err)
	}

	// Parse envelope: "type len\0content"
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("object get %s: invalid format (no NUL): %w", h, object.ErrIntegrity)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("object get %s: invalid header %q: %w", h, header, object.ErrIntegrity)
	}
	objType := object.ObjectType(parts[0])
	length, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", nil, fmt.Errorf("object get %s: invalid length %q: %w", h, parts[1], err)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("object get %s: length mismatch (header=%d, actual=%d): %w",
			h, length, len(content), object.ErrIntegrity)
	}

	return objType, content, nil
}

func compressZstd(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompressZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
