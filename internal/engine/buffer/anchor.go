package buffer

import (
	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/sumtree"
)

// Bias resolves ties when an anchor's position sits exactly on a
// boundary: Left attaches to preceding content, Right to following
// content (spec.md §3).
type Bias = sumtree.Bias

const (
	Left  = sumtree.Left
	Right = sumtree.Right
)

// Anchor is a stable logical position that survives arbitrary edits
// (spec.md §3): (insertion local stamp, offset within that insertion,
// bias). The two sentinel anchors MinAnchor/MaxAnchor bound the document
// regardless of what has been inserted.
type Anchor struct {
	InsertionLocal clock.Local
	Offset         int
	Bias           Bias
	boundary       int8 // 0 normal, -1 MinAnchor, 1 MaxAnchor
}

// MinAnchor returns the sentinel anchoring the start of the document.
func MinAnchor() Anchor { return Anchor{Bias: Left, boundary: -1} }

// MaxAnchor returns the sentinel anchoring the end of the document.
func MaxAnchor() Anchor { return Anchor{Bias: Right, boundary: 1} }

// IsMin reports whether a is the start-of-document sentinel.
func (a Anchor) IsMin() bool { return a.boundary < 0 }

// IsMax reports whether a is the end-of-document sentinel.
func (a Anchor) IsMax() bool { return a.boundary > 0 }

// Equal reports whether a and other denote the same logical position.
func (a Anchor) Equal(other Anchor) bool {
	if a.boundary != 0 || other.boundary != 0 {
		return a.boundary == other.boundary
	}
	return a.InsertionLocal == other.InsertionLocal && a.Offset == other.Offset && a.Bias == other.Bias
}
