package diff

import (
	"strings"
	"testing"
)

// script renders an edit script compactly: "=x -y +z".
func script(ops []Op) string {
	var parts []string
	for _, op := range ops {
		switch op.Type {
		case Equal:
			parts = append(parts, "="+op.Line)
		case Delete:
			parts = append(parts, "-"+op.Line)
		case Insert:
			parts = append(parts, "+"+op.Line)
		}
	}
	return strings.Join(parts, " ")
}

func TestLines_Basic(t *testing.T) {
	cases := []struct {
		name string
		a, b []string
		want string
	}{
		{"both empty", nil, nil, ""},
		{"all inserts", nil, []string{"x", "y"}, "+x +y"},
		{"all deletes", []string{"x", "y"}, nil, "-x -y"},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, "=a =b"},
		{"replace middle", []string{"a", "b", "c"}, []string{"a", "x", "c"}, "=a -b +x =c"},
		{"insert middle", []string{"a", "c"}, []string{"a", "b", "c"}, "=a +b =c"},
		{"delete middle", []string{"a", "b", "c"}, []string{"a", "c"}, "=a -b =c"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := script(Lines(tc.a, tc.b))
			if got != tc.want {
				t.Errorf("Lines = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLines_EditScriptReconstructsBoth(t *testing.T) {
	a := []string{"func main() {", "\tx := 1", "\ty := 2", "\tprintln(x)", "}"}
	b := []string{"func main() {", "\tx := 1", "\tprintln(x)", "\tprintln(done)", "}"}

	ops := Lines(a, b)

	var rebuiltA, rebuiltB []string
	for _, op := range ops {
		switch op.Type {
		case Equal:
			rebuiltA = append(rebuiltA, op.Line)
			rebuiltB = append(rebuiltB, op.Line)
		case Delete:
			rebuiltA = append(rebuiltA, op.Line)
		case Insert:
			rebuiltB = append(rebuiltB, op.Line)
		}
	}
	if strings.Join(rebuiltA, "\n") != strings.Join(a, "\n") {
		t.Errorf("edit script does not reconstruct a:\n%v", rebuiltA)
	}
	if strings.Join(rebuiltB, "\n") != strings.Join(b, "\n") {
		t.Errorf("edit script does not reconstruct b:\n%v", rebuiltB)
	}
}

func TestLines_MinimalForDisjointInputs(t *testing.T) {
	a := []string{"1", "2", "3"}
	b := []string{"4", "5"}
	ops := Lines(a, b)

	// Nothing in common: the script is all deletes plus all inserts.
	equals := 0
	for _, op := range ops {
		if op.Type == Equal {
			equals++
		}
	}
	if equals != 0 {
		t.Errorf("disjoint inputs produced %d equal ops", equals)
	}
	if len(ops) != len(a)+len(b) {
		t.Errorf("script length = %d, want %d", len(ops), len(a)+len(b))
	}
}

func TestSplitLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one line, no newline", 1},
		{"one line\n", 1},
		{"two\nlines\n", 2},
		{"gap\n\nafter\n", 3},
	}
	for _, tc := range cases {
		if got := len(SplitLines([]byte(tc.in))); got != tc.want {
			t.Errorf("SplitLines(%q) = %d lines, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCountNonEmptyLines(t *testing.T) {
	if got := CountNonEmptyLines([]byte("a\n\n  \nb\n")); got != 2 {
		t.Errorf("CountNonEmptyLines = %d, want 2", got)
	}
	if got := CountNonEmptyLines(nil); got != 0 {
		t.Errorf("CountNonEmptyLines(nil) = %d, want 0", got)
	}
}
