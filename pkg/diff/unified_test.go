package diff

import (
	"strings"
	"testing"
)

func TestContent_SingleHunk(t *testing.T) {
	base := []byte("one\ntwo\nthree\nfour\nfive\n")
	compare := []byte("one\ntwo\nTHREE\nfour\nfive\n")

	hunks, additions, deletions, isBinary := Content(base, compare)
	if isBinary {
		t.Fatal("text flagged binary")
	}
	if additions != 1 || deletions != 1 {
		t.Errorf("+%d -%d, want +1 -1", additions, deletions)
	}
	if len(hunks) != 1 {
		t.Fatalf("hunks = %d, want 1", len(hunks))
	}

	h := hunks[0]
	if h.Header() != "@@ -1,5 +1,5 @@" {
		t.Errorf("header = %q", h.Header())
	}
	want := []string{" one", " two", "-three", "+THREE", " four", " five"}
	if len(h.Lines) != len(want) {
		t.Fatalf("hunk lines = %v", h.Lines)
	}
	for i := range want {
		if h.Lines[i] != want[i] {
			t.Errorf("lines[%d] = %q, want %q", i, h.Lines[i], want[i])
		}
	}
}

func TestContent_DistantChangesSplitHunks(t *testing.T) {
	var baseLines, compLines []string
	for i := 1; i <= 30; i++ {
		line := "line"
		baseLines = append(baseLines, line)
		compLines = append(compLines, line)
	}
	compLines[0] = "CHANGED-TOP"
	compLines[29] = "CHANGED-BOTTOM"

	hunks, _, _, _ := Content(
		[]byte(strings.Join(baseLines, "\n")+"\n"),
		[]byte(strings.Join(compLines, "\n")+"\n"),
	)
	if len(hunks) != 2 {
		t.Fatalf("hunks = %d, want 2 for changes 30 lines apart", len(hunks))
	}
	if hunks[0].BaseStart != 1 {
		t.Errorf("first hunk starts at %d, want 1", hunks[0].BaseStart)
	}
	if hunks[1].BaseStart <= hunks[0].BaseStart {
		t.Errorf("second hunk start %d not after first %d", hunks[1].BaseStart, hunks[0].BaseStart)
	}
}

func TestContent_NearbyChangesShareHunk(t *testing.T) {
	base := []byte("a\nb\nc\nd\ne\nf\ng\n")
	compare := []byte("a\nB\nc\nd\nE\nf\ng\n")

	hunks, _, _, _ := Content(base, compare)
	// Changes 3 lines apart with context 3 coalesce.
	if len(hunks) != 1 {
		t.Fatalf("hunks = %d, want 1", len(hunks))
	}
}

func TestContent_PureAddition(t *testing.T) {
	hunks, additions, deletions, _ := Content(nil, []byte("new\nfile\n"))
	if additions != 2 || deletions != 0 {
		t.Errorf("+%d -%d, want +2 -0", additions, deletions)
	}
	if len(hunks) != 1 {
		t.Fatalf("hunks = %d, want 1", len(hunks))
	}
	if hunks[0].BaseCount != 0 {
		t.Errorf("BaseCount = %d, want 0", hunks[0].BaseCount)
	}
	if hunks[0].BaseStart != 0 {
		t.Errorf("BaseStart = %d, want 0 for an empty side", hunks[0].BaseStart)
	}
}

func TestContent_Binary(t *testing.T) {
	hunks, additions, deletions, isBinary := Content([]byte{0x00, 0x01}, []byte("text\n"))
	if !isBinary {
		t.Fatal("NUL content not flagged binary")
	}
	if hunks != nil || additions != 0 || deletions != 0 {
		t.Errorf("binary diff produced hunks/counts: %v +%d -%d", hunks, additions, deletions)
	}
}

func TestContent_Identical(t *testing.T) {
	data := []byte("same\ncontent\n")
	hunks, additions, deletions, _ := Content(data, data)
	if len(hunks) != 0 || additions != 0 || deletions != 0 {
		t.Errorf("identical content produced %d hunks +%d -%d", len(hunks), additions, deletions)
	}
}

func TestIsBinary(t *testing.T) {
	if IsBinary([]byte("plain text, no nulls")) {
		t.Error("text flagged binary")
	}
	if !IsBinary([]byte{'a', 0x00, 'b'}) {
		t.Error("NUL byte not flagged")
	}
	// A NUL beyond the sniff window is ignored.
	big := make([]byte, binarySniffLen+10)
	for i := range big {
		big[i] = 'x'
	}
	big[len(big)-1] = 0x00
	if IsBinary(big) {
		t.Error("NUL beyond sniff window flagged")
	}
}

func TestFormat_Unified(t *testing.T) {
	base := []byte("one\ntwo\n")
	compare := []byte("one\nTWO\n")
	hunks, additions, deletions, _ := Content(base, compare)

	fd := &FileDiff{
		Path:      "notes.txt",
		Status:    StatusModified,
		Additions: additions,
		Deletions: deletions,
		Hunks:     hunks,
	}
	got := Format(fd)
	want := "--- a/notes.txt\n+++ b/notes.txt\n@@ -1,2 +1,2 @@\n one\n-two\n+TWO\n"
	if got != want {
		t.Errorf("Format = %q, want %q", got, want)
	}
}

func TestFormat_Binary(t *testing.T) {
	fd := &FileDiff{Path: "img.png", Status: StatusModified, IsBinary: true}
	got := Format(fd)
	if !strings.Contains(got, "Binary files differ") {
		t.Errorf("Format = %q", got)
	}
}
