// Package locator implements the dense order-maintenance identifiers that
// totally order fragments in the fragment store (spec §4.3.1): a
// variable-length vector of integers, compared lexicographically, that
// admits minting a new locator strictly between any two existing ones
// without renumbering anything else.
package locator

// Locator is a variable-length integer vector. Comparison is
// lexicographic; a shorter prefix that matches another locator's first
// len(l) coordinates sorts before it (the same convention as
// string-prefix comparison).
type Locator []uint64

const midpoint = ^uint64(0) / 2

// Min returns the sentinel locator ordering before every other locator.
func Min() Locator { return Locator{0} }

// Max returns the sentinel locator ordering after every other locator.
func Max() Locator { return Locator{^uint64(0)} }

// Compare returns -1, 0 or 1 as l orders before, equal to, or after other.
func (l Locator) Compare(other Locator) int {
	n := len(l)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if l[i] < other[i] {
			return -1
		}
		if l[i] > other[i] {
			return 1
		}
	}
	switch {
	case len(l) < len(other):
		return -1
	case len(l) > len(other):
		return 1
	default:
		return 0
	}
}

// Equal reports whether l and other denote the same position.
func (l Locator) Equal(other Locator) bool { return l.Compare(other) == 0 }

// Clone returns an independent copy of l.
func (l Locator) Clone() Locator {
	out := make(Locator, len(l))
	copy(out, l)
	return out
}

// Between mints a locator strictly greater than a and strictly less than
// b. a must compare less than b. The result walks the shared prefix of a
// and b, then either widens at the first differing coordinate (taking the
// midpoint of the gap, recursing with an extra coordinate if the gap is
// too narrow) or, if a is a prefix of b, appends a midpoint coordinate
// after a's last index.
func Between(a, b Locator) Locator {
	i := 0
	for {
		var av, bv uint64
		aHas := i < len(a)
		bHas := i < len(b)
		if aHas {
			av = a[i]
		}
		if bHas {
			bv = b[i]
		}
		switch {
		case !aHas && !bHas:
			// a == b up to here; shouldn't happen for a<b callers, but
			// widen safely rather than panic.
			out := append(a.Clone(), midpoint)
			return out
		case !aHas:
			// a is a strict prefix of b: insert a coordinate between
			// "nothing" (0) and bv.
			mid := bv / 2
			out := append(a.Clone(), mid)
			if mid == 0 {
				out = append(out, midpoint)
			}
			return out
		case !bHas:
			out := append(a.Clone(), a[i]+1)
			return out
		case av == bv:
			i++
			continue
		default:
			// av < bv (by precondition a<b); try to fit a coordinate
			// strictly between them.
			if bv-av > 1 {
				mid := av + (bv-av)/2
				out := make(Locator, i, i+1)
				copy(out, a[:i])
				out = append(out, mid)
				return out
			}
			// No integer strictly between av and bv: keep a's coordinates
			// through i and follow them with a suffix above the rest of
			// a; the result stays below b because av < bv.
			out := make(Locator, i+1, len(a)+1)
			copy(out, a[:i+1])
			return append(out, Between(a[i+1:], Max())...)
		}
	}
}
