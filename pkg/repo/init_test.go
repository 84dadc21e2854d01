package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInit_CreatesRootCommitAndDefaultBranch(t *testing.T) {
	dir := t.TempDir()
	r, root, err := Init(dir, "docs", testAuthor(), nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	if root.Message != "Initialize repository" {
		t.Errorf("root message = %q", root.Message)
	}
	if !root.IsRoot() {
		t.Errorf("root commit has parents %v", root.Parents)
	}

	head, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}
	if head != root.Hash {
		t.Errorf("HEAD = %s, want root %s", head, root.Hash)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != DefaultBranchName {
		t.Errorf("CurrentBranch = %q, want %q", branch, DefaultBranchName)
	}

	// The default branch is protected from the start.
	b, err := r.GetBranch(DefaultBranchName)
	if err != nil {
		t.Fatalf("GetBranch: %v", err)
	}
	if !b.Protected || !b.IsDefault {
		t.Errorf("default branch protected=%v isDefault=%v, want both true", b.Protected, b.IsDefault)
	}
}

func TestInit_TwiceFails(t *testing.T) {
	dir := t.TempDir()
	r, _, err := Init(dir, "docs", testAuthor(), nil)
	if err != nil {
		t.Fatalf("first Init: %v", err)
	}
	r.Close()

	_, _, err = Init(dir, "docs", testAuthor(), nil)
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init error = %v, want ErrAlreadyInitialized", err)
	}
}

func TestInit_CustomBranchName(t *testing.T) {
	r, _, err := Init(t.TempDir(), "docs", testAuthor(), &InitOptions{DefaultBranch: "trunk"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()

	branch, err := r.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch != "trunk" {
		t.Errorf("CurrentBranch = %q, want trunk", branch)
	}
}

func TestInit_UnknownStorageBackend(t *testing.T) {
	_, _, err := Init(t.TempDir(), "docs", testAuthor(), &InitOptions{Storage: "papyrus"})
	if err == nil {
		t.Fatal("Init with unknown storage backend succeeded")
	}
}

func TestOpen_FindsRepoFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	r, root, err := Init(dir, "docs", testAuthor(), &InitOptions{Timestamp: time.Unix(1700000000, 0)})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	r.Close()

	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	reopened, err := Open(sub)
	if err != nil {
		t.Fatalf("Open from subdir: %v", err)
	}
	defer reopened.Close()

	head, err := reopened.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if head != root.Hash {
		t.Errorf("reopened HEAD = %s, want %s", head, root.Hash)
	}
}

func TestOpen_NotARepository(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("Open outside any repository succeeded")
	}
}

func TestInit_SqliteBackend(t *testing.T) {
	dir := t.TempDir()
	r, root, err := Init(dir, "docs", testAuthor(), &InitOptions{Storage: StorageSqlite})
	if err != nil {
		t.Fatalf("Init sqlite: %v", err)
	}

	c := mustCommit(t, r, "first", map[string][]byte{"a.txt": []byte("one\n")})
	r.Close()

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	head, err := reopened.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if head != c.Hash {
		t.Errorf("HEAD after reopen = %s, want %s", head, c.Hash)
	}
	got, err := reopened.GetCommit(root.Hash)
	if err != nil || got == nil {
		t.Fatalf("GetCommit(root) = %v, %v", got, err)
	}
}
