package repo

import (
	"testing"
	"time"
)

func testAuthor() Author {
	return Author{ID: "casey@example.com", Name: "Casey Reed", Email: "casey@example.com"}
}

// newTestRepo creates a file-backed repository in a temp dir with a
// fixed root timestamp so hashes are stable within a test.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	r, _, err := Init(t.TempDir(), "test-project", testAuthor(), &InitOptions{
		Timestamp: time.Unix(1700000000, 0),
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

// mustCommit records a snapshot and fails the test on error. Each call
// uses a distinct timestamp so identical snapshots still produce
// distinct commits.
var testClock int64 = 1700000001

func mustCommit(t *testing.T, r *Repository, message string, content map[string][]byte) *Commit {
	t.Helper()
	testClock++
	c, err := r.Commit(testAuthor(), message, content, &CommitOptions{
		Timestamp: time.Unix(testClock, 0),
	})
	if err != nil {
		t.Fatalf("Commit(%q): %v", message, err)
	}
	return c
}
