package diff

import "slices"

// OpType classifies a line in an edit script.
type OpType int

const (
	Equal  OpType = iota // Line is unchanged between a and b.
	Insert               // Line was inserted (present in b only).
	Delete               // Line was deleted (present in a only).
)

// Op is a single operation in an edit script produced by Lines.
type Op struct {
	Type OpType
	Line string
}

// Lines computes a minimum edit script turning a into b, comparing
// whole lines with the Myers greedy algorithm. The Equal ops of the
// result form a longest common subsequence of the two inputs. Applying
// the Delete and Equal ops reproduces a; the Insert and Equal ops
// reproduce b.
func Lines(a, b []string) []Op {
	n, m := len(a), len(b)
	if n == 0 {
		return oneSided(b, Insert)
	}
	if m == 0 {
		return oneSided(a, Delete)
	}

	// The frontier holds, per diagonal k (offset by `total` to index a
	// slice), the furthest x reached with the current number of edits.
	total := n + m
	frontier := make([]int, 2*total+1)

	// layers[d] is the frontier as it stood entering depth d, which is
	// what unwind needs to retrace the d'th edit.
	layers := make([][]int, 0, 16)

	for d := 0; d <= total; d++ {
		layers = append(layers, slices.Clone(frontier))
		for k := -d; k <= d; k += 2 {
			i := k + total
			var x int
			if k == -d || (k != d && frontier[i-1] < frontier[i+1]) {
				x = frontier[i+1] // extend downward: one more line of b
			} else {
				x = frontier[i-1] + 1 // extend rightward: one more line of a
			}
			y := x - k

			// Ride the snake: consume matching lines for free.
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			frontier[i] = x

			if x >= n && y >= m {
				return unwind(layers, a, b, d)
			}
		}
	}

	// Unreachable: d = n+m always suffices.
	return nil
}

// oneSided builds the trivial script when one input is empty.
func oneSided(lines []string, t OpType) []Op {
	if len(lines) == 0 {
		return nil
	}
	ops := make([]Op, len(lines))
	for i, line := range lines {
		ops[i] = Op{Type: t, Line: line}
	}
	return ops
}

// unwind retraces the search from (len(a), len(b)) back to the origin,
// emitting ops in reverse and flipping them at the end. layers[d] is
// the frontier state entering depth d.
func unwind(layers [][]int, a, b []string, depth int) []Op {
	n, m := len(a), len(b)
	total := n + m
	x, y := n, m

	var ops []Op
	for d := depth; d > 0; d-- {
		k := x - y
		i := k + total
		prior := layers[d]

		var prevK int
		if k == -d || (k != d && prior[i-1] < prior[i+1]) {
			prevK = k + 1 // the d'th edit was an insert
		} else {
			prevK = k - 1 // the d'th edit was a delete
		}
		prevX := prior[prevK+total]
		prevY := prevX - prevK

		// Walk back along the snake first.
		for x > prevX && y > prevY {
			x--
			y--
			ops = append(ops, Op{Type: Equal, Line: a[x]})
		}

		if prevK == k-1 {
			x--
			ops = append(ops, Op{Type: Delete, Line: a[x]})
		} else {
			y--
			ops = append(ops, Op{Type: Insert, Line: b[y]})
		}
	}

	// Whatever remains is a shared prefix.
	for x > 0 && y > 0 {
		x--
		y--
		ops = append(ops, Op{Type: Equal, Line: a[x]})
	}

	slices.Reverse(ops)
	return ops
}
