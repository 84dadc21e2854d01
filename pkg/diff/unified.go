package diff

import (
	"bytes"
	"fmt"
)

// DefaultContext is the number of unchanged lines carried on each side
// of a hunk.
const DefaultContext = 3

// Hunk is one contiguous group of changes in a unified diff. Lines are
// prefixed "+", "-", or " " (context). Start positions are 1-based;
// a zero count marks an empty side, matching unified-diff conventions.
type Hunk struct {
	BaseStart    int
	BaseCount    int
	CompareStart int
	CompareCount int
	Lines        []string
}

// Header renders the hunk's "@@ -l,c +l,c @@" range line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.BaseStart, h.BaseCount, h.CompareStart, h.CompareCount)
}

// Content computes the line-level diff between two text revisions:
// unified hunks plus added/deleted line counts. Binary content on
// either side short-circuits with IsBinary set and no hunks.
func Content(base, compare []byte) (hunks []Hunk, additions, deletions int, isBinary bool) {
	if IsBinary(base) || IsBinary(compare) {
		return nil, 0, 0, true
	}

	ops := Lines(SplitLines(base), SplitLines(compare))
	for _, op := range ops {
		switch op.Type {
		case Insert:
			additions++
		case Delete:
			deletions++
		}
	}
	return buildHunks(ops, DefaultContext), additions, deletions, false
}

// buildHunks groups an edit script into unified hunks with the given
// amount of context. Changes separated by more than 2*context equal
// lines land in separate hunks.
func buildHunks(ops []Op, context int) []Hunk {
	// Indexes of non-Equal ops.
	var changed []int
	for i, op := range ops {
		if op.Type != Equal {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []Hunk
	groupStart := changed[0]
	groupEnd := changed[0]

	flush := func(start, end int) {
		lo := start - context
		if lo < 0 {
			lo = 0
		}
		hi := end + context
		if hi > len(ops)-1 {
			hi = len(ops) - 1
		}

		// Line numbers at the window start.
		baseLine, compLine := 1, 1
		for i := 0; i < lo; i++ {
			switch ops[i].Type {
			case Equal:
				baseLine++
				compLine++
			case Delete:
				baseLine++
			case Insert:
				compLine++
			}
		}

		h := Hunk{BaseStart: baseLine, CompareStart: compLine}
		for i := lo; i <= hi; i++ {
			switch ops[i].Type {
			case Equal:
				h.Lines = append(h.Lines, " "+ops[i].Line)
				h.BaseCount++
				h.CompareCount++
			case Delete:
				h.Lines = append(h.Lines, "-"+ops[i].Line)
				h.BaseCount++
			case Insert:
				h.Lines = append(h.Lines, "+"+ops[i].Line)
				h.CompareCount++
			}
		}
		if h.BaseCount == 0 {
			h.BaseStart--
		}
		if h.CompareCount == 0 {
			h.CompareStart--
		}
		hunks = append(hunks, h)
	}

	for _, idx := range changed[1:] {
		if idx-groupEnd > 2*context {
			flush(groupStart, groupEnd)
			groupStart = idx
		}
		groupEnd = idx
	}
	flush(groupStart, groupEnd)

	return hunks
}

// Format renders a FileDiff in unified-diff text form.
func Format(fd *FileDiff) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- a/%s\n+++ b/%s\n", fd.Path, fd.Path)
	if fd.IsBinary {
		fmt.Fprintf(&buf, "Binary files differ\n")
		return buf.String()
	}
	for _, h := range fd.Hunks {
		fmt.Fprintln(&buf, h.Header())
		for _, line := range h.Lines {
			fmt.Fprintln(&buf, line)
		}
	}
	return buf.String()
}
