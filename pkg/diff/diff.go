// Package diff computes file-level and line-level differences between
// two revisions of tracked content.
package diff

import (
	"bytes"

	"github.com/draftline/quill/pkg/object"
)

// FileStatus classifies what happened to a path between two trees.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"    // Path exists only in the compare tree.
	StatusDeleted  FileStatus = "deleted"  // Path exists only in the base tree.
	StatusModified FileStatus = "modified" // Path exists in both with differing hashes.
)

// FileDiff holds the line-level diff for a single path.
type FileDiff struct {
	Path      string
	Status    FileStatus
	BaseHash  object.Hash
	CompHash  object.Hash
	IsBinary  bool
	Additions int
	Deletions int
	Hunks     []Hunk
}

// Result describes the difference between two commits' trees. Files
// are sorted by path. Transient: never persisted.
type Result struct {
	BaseCommit    object.Hash
	CompareCommit object.Hash
	Files         []FileDiff
	Additions     int
	Deletions     int
}

// binarySniffLen bounds how many leading bytes are inspected for NULs.
const binarySniffLen = 8000

// IsBinary reports whether content should skip line diffing, using the
// same heuristic as Git: a NUL byte in the leading window.
func IsBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

// SplitLines splits content into lines without trailing newlines. A
// trailing newline does not produce a final empty line.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := string(data)
	if s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

// CountNonEmptyLines counts lines containing at least one non-blank
// character. Used for the simplified commit stats.
func CountNonEmptyLines(data []byte) int {
	count := 0
	for _, line := range SplitLines(data) {
		if len(bytes.TrimSpace([]byte(line))) > 0 {
			count++
		}
	}
	return count
}
