package repo

import (
	"errors"
	"testing"
)

func TestBranch_CreateListDelete(t *testing.T) {
	r := newTestRepo(t)
	mustCommit(t, r, "initial", map[string][]byte{"a.txt": []byte("a\n")})

	head, err := r.ResolveRef("HEAD")
	if err != nil {
		t.Fatalf("ResolveRef(HEAD): %v", err)
	}

	b, err := r.CreateBranch("feature", head, nil)
	if err != nil {
		t.Fatalf("CreateBranch(feature): %v", err)
	}
	if b.Head != head {
		t.Errorf("feature head = %s, want %s", b.Head, head)
	}

	branches, err := r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("ListBranches: got %d branches, want 2", len(branches))
	}
	if branches[0].Name != "feature" || branches[1].Name != "main" {
		t.Errorf("branch order = [%s %s], want [feature main]", branches[0].Name, branches[1].Name)
	}

	if err := r.DeleteBranch("feature"); err != nil {
		t.Fatalf("DeleteBranch(feature): %v", err)
	}
	branches, err = r.ListBranches()
	if err != nil {
		t.Fatalf("ListBranches after delete: %v", err)
	}
	if len(branches) != 1 || branches[0].Name != "main" {
		t.Fatalf("branches after delete = %v", branches)
	}
}

func TestBranch_CreateAtHeadByDefault(t *testing.T) {
	r := newTestRepo(t)
	c := mustCommit(t, r, "initial", map[string][]byte{"a.txt": []byte("a\n")})

	b, err := r.CreateBranch("feature", "", nil)
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if b.Head != c.Hash {
		t.Errorf("feature head = %s, want HEAD %s", b.Head, c.Hash)
	}
}

func TestBranch_DuplicateName(t *testing.T) {
	r := newTestRepo(t)
	mustCommit(t, r, "initial", map[string][]byte{"a.txt": []byte("a\n")})

	if _, err := r.CreateBranch("feature", "", nil); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	_, err := r.CreateBranch("feature", "", nil)
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("duplicate CreateBranch error = %v, want ErrDuplicateName", err)
	}
}

func TestBranch_CreateAtUnknownCommit(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.CreateBranch("feature", "deadbeef", nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateBranch at bogus hash: err = %v, want ErrNotFound", err)
	}
}

func TestBranch_DeleteDefaultFails(t *testing.T) {
	r := newTestRepo(t)
	err := r.DeleteBranch(DefaultBranchName)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("DeleteBranch(main) error = %v, want ErrInvariantViolation", err)
	}
}

func TestBranch_DeleteProtectedFails(t *testing.T) {
	r := newTestRepo(t)
	mustCommit(t, r, "initial", map[string][]byte{"a.txt": []byte("a\n")})

	if _, err := r.CreateBranch("release", "", &BranchOptions{Protected: true}); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	err := r.DeleteBranch("release")
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("DeleteBranch(release) error = %v, want ErrInvariantViolation", err)
	}
}

func TestBranch_DeleteCheckedOutFails(t *testing.T) {
	r := newTestRepo(t)
	mustCommit(t, r, "initial", map[string][]byte{"a.txt": []byte("a\n")})

	if _, err := r.CreateBranch("feature", "", nil); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if _, err := r.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	err := r.DeleteBranch("feature")
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("delete checked-out branch error = %v, want ErrInvariantViolation", err)
	}
}

func TestBranch_DeleteMissing(t *testing.T) {
	r := newTestRepo(t)
	err := r.DeleteBranch("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteBranch(nope) error = %v, want ErrNotFound", err)
	}
}

func TestBranch_SwitchMovesHeadOnly(t *testing.T) {
	r := newTestRepo(t)
	c1 := mustCommit(t, r, "on main", map[string][]byte{"a.txt": []byte("1\n")})

	if _, err := r.CreateBranch("feature", "", nil); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if _, err := r.SwitchBranch("feature"); err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}

	c2 := mustCommit(t, r, "on feature", map[string][]byte{"a.txt": []byte("2\n")})

	mainHead, err := r.ResolveRef("refs/heads/main")
	if err != nil {
		t.Fatalf("ResolveRef(main): %v", err)
	}
	if mainHead != c1.Hash {
		t.Errorf("main moved to %s, want %s", mainHead, c1.Hash)
	}
	featureHead, err := r.ResolveRef("refs/heads/feature")
	if err != nil {
		t.Fatalf("ResolveRef(feature): %v", err)
	}
	if featureHead != c2.Hash {
		t.Errorf("feature = %s, want %s", featureHead, c2.Hash)
	}
}

func TestBranch_SwitchToMissing(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.SwitchBranch("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SwitchBranch(nope) error = %v, want ErrNotFound", err)
	}
}

func TestBranch_InvalidNames(t *testing.T) {
	r := newTestRepo(t)
	for _, name := range []string{"", "with space", "a/b", "a..b", "trail.lock"} {
		if _, err := r.CreateBranch(name, "", nil); err == nil {
			t.Errorf("branch name %q accepted", name)
		}
	}
}

func TestBranch_MetadataSurvivesReopen(t *testing.T) {
	r := newTestRepo(t)
	mustCommit(t, r, "initial", map[string][]byte{"a.txt": []byte("a\n")})

	if _, err := r.CreateBranch("release", "", &BranchOptions{
		Protected:   true,
		Description: "cut for 1.0",
		CreatedBy:   "casey@example.com",
	}); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}

	reopened, err := Open(r.RootDir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	b, err := reopened.GetBranch("release")
	if err != nil {
		t.Fatalf("GetBranch: %v", err)
	}
	if !b.Protected {
		t.Error("protected flag lost across reopen")
	}
	if b.Description != "cut for 1.0" {
		t.Errorf("description = %q", b.Description)
	}
}
