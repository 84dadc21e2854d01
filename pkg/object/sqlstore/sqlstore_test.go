package sqlstore

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/draftline/quill/pkg/object"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, db, err := Open(filepath.Join(t.TempDir(), "objects.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	data := []byte("sqlite-backed content\n")
	h := object.HashBlob(data)
	if err := s.Put(h, object.TypeBlob, data); err != nil {
		t.Fatalf("Put: %v", err)
	}

	objType, got, err := s.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if objType != object.TypeBlob {
		t.Errorf("type = %q, want blob", objType)
	}
	if string(got) != string(data) {
		t.Errorf("content = %q, want %q", got, data)
	}
	if !s.Has(h) {
		t.Error("Has = false after Put")
	}
}

func TestGet_Missing(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.Get(object.HashBlob([]byte("missing")))
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("Get miss: err = %v, want ErrNotFound", err)
	}
	if s.Has(object.HashBlob([]byte("missing"))) {
		t.Error("Has = true for missing object")
	}
}

func TestPut_ConflictIsNoOp(t *testing.T) {
	s := openTestStore(t)

	data := []byte("original")
	h := object.HashBlob(data)
	if err := s.Put(h, object.TypeBlob, data); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	// Same hash, different payload: the first write wins.
	if err := s.Put(h, object.TypeBlob, []byte("impostor")); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	_, got, err := s.Get(h)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "original" {
		t.Errorf("content = %q, want original", got)
	}
}

func TestListHashes_Ordered(t *testing.T) {
	s := openTestStore(t)

	var want []string
	for _, content := range []string{"a", "b", "c"} {
		h, err := object.WriteBlob(s, []byte(content))
		if err != nil {
			t.Fatalf("WriteBlob: %v", err)
		}
		want = append(want, string(h))
	}
	sort.Strings(want)

	var got []string
	err := s.ListHashes(func(h object.Hash, objType object.ObjectType) error {
		if objType != object.TypeBlob {
			t.Errorf("type of %s = %q, want blob", h, objType)
		}
		got = append(got, string(h))
		return nil
	})
	if err != nil {
		t.Fatalf("ListHashes: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("listed %d hashes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
