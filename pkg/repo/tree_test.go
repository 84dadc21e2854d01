package repo

import (
	"sort"
	"testing"

	"github.com/draftline/quill/pkg/object"
	"github.com/google/go-cmp/cmp"
)

func TestTree_FlattenRoundTrip(t *testing.T) {
	r := newTestRepo(t)

	content := map[string][]byte{
		"README.md":        []byte("hello\n"),
		"docs/guide.md":    []byte("guide\n"),
		"docs/api/spec.md": []byte("spec\n"),
		"src/main.txt":     []byte("main\n"),
	}
	c := mustCommit(t, r, "layout", content)

	flat, err := r.FlattenTree(c.TreeHash)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}

	var paths []string
	for _, e := range flat {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)

	want := []string{"README.md", "docs/api/spec.md", "docs/guide.md", "src/main.txt"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("flattened paths mismatch (-want +got):\n%s", diff)
	}

	for _, e := range flat {
		data, err := object.ReadBlob(r.Store, e.ContentHash)
		if err != nil {
			t.Fatalf("ReadBlob(%s): %v", e.Path, err)
		}
		if string(data) != string(content[e.Path]) {
			t.Errorf("%s = %q, want %q", e.Path, data, content[e.Path])
		}
		if e.Size != int64(len(content[e.Path])) {
			t.Errorf("%s size = %d, want %d", e.Path, e.Size, len(content[e.Path]))
		}
	}
}

func TestTree_DeterministicAcrossInsertOrder(t *testing.T) {
	// Tree hashing must not depend on map iteration order, which the
	// runtime randomizes anyway; build the same snapshot twice and
	// compare.
	r := newTestRepo(t)

	content := map[string][]byte{
		"b.txt":     []byte("b\n"),
		"a.txt":     []byte("a\n"),
		"dir/c.txt": []byte("c\n"),
	}
	refs1, err := writeBlobs(r.Store, content)
	if err != nil {
		t.Fatalf("writeBlobs: %v", err)
	}
	h1, err := buildTree(r.Store, refs1)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}

	refs2, err := writeBlobs(r.Store, content)
	if err != nil {
		t.Fatalf("writeBlobs: %v", err)
	}
	h2, err := buildTree(r.Store, refs2)
	if err != nil {
		t.Fatalf("buildTree: %v", err)
	}

	if h1 != h2 {
		t.Errorf("tree hashes differ: %s vs %s", h1, h2)
	}
}

func TestTree_FileDirectoryCollision(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Commit(testAuthor(), "collision", map[string][]byte{
		"docs":          []byte("file\n"),
		"docs/guide.md": []byte("dir\n"),
	}, nil)
	if err == nil {
		t.Fatal("snapshot with file/directory collision accepted")
	}
}

func TestValidatePath(t *testing.T) {
	valid := []string{"a.txt", "dir/file.md", "deeply/nested/path/x", "my file.txt", "release notes/v1.md"}
	for _, p := range valid {
		if err := validatePath(p); err != nil {
			t.Errorf("validatePath(%q) = %v, want nil", p, err)
		}
	}
	invalid := []string{"", "/lead", "trail/", "a//b", "a/./b", "a/../b", `back\slash`,
		"two\nlines.txt", "tab\tname", "carriage\rreturn"}
	for _, p := range invalid {
		if err := validatePath(p); err == nil {
			t.Errorf("validatePath(%q) accepted", p)
		}
	}
}

func TestTree_PathsWithSpacesRoundTrip(t *testing.T) {
	// A committed snapshot must stay readable: every stored path has to
	// survive tree serialization, spaces included.
	r := newTestRepo(t)

	content := map[string][]byte{
		"my file.txt":            []byte("hello\n"),
		"release notes/week one": []byte("notes\n"),
		"release notes/week two": []byte("more\n"),
	}
	c := mustCommit(t, r, "spaced paths", content)

	flat, err := r.FlattenTree(c.TreeHash)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}

	var paths []string
	for _, e := range flat {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	want := []string{"my file.txt", "release notes/week one", "release notes/week two"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("flattened paths mismatch (-want +got):\n%s", diff)
	}

	for _, e := range flat {
		data, err := object.ReadBlob(r.Store, e.ContentHash)
		if err != nil {
			t.Fatalf("ReadBlob(%s): %v", e.Path, err)
		}
		if string(data) != string(content[e.Path]) {
			t.Errorf("%s = %q, want %q", e.Path, data, content[e.Path])
		}
	}

	// The commit itself must remain diffable.
	if _, err := r.Diff(c.Hash, c.Hash); err != nil {
		t.Fatalf("Diff over spaced paths: %v", err)
	}
}
