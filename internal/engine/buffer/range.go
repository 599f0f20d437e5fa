package buffer

import "fmt"

// PointRange represents a range using line/column positions.
type PointRange struct {
	Start Point // Inclusive start position
	End   Point // Exclusive end position
}

// NewPointRange creates a new PointRange from start and end points.
func NewPointRange(start, end Point) PointRange {
	return PointRange{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r PointRange) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start.String(), r.End.String())
}

// IsEmpty returns true if start equals end.
func (r PointRange) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// IsValid returns true if start <= end.
func (r PointRange) IsValid() bool {
	return r.Start.Compare(r.End) <= 0
}

// Contains returns true if the given point is within the range.
func (r PointRange) Contains(p Point) bool {
	return p.Compare(r.Start) >= 0 && p.Compare(r.End) < 0
}

// IsSingleLine returns true if the range spans only one line.
func (r PointRange) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}

// PointRangeUTF16 represents a range using line/UTF-16 column positions.
// This is used for LSP compatibility.
type PointRangeUTF16 struct {
	Start PointUTF16 // Inclusive start position
	End   PointUTF16 // Exclusive end position
}

// NewPointRangeUTF16 creates a new PointRangeUTF16 from start and end points.
func NewPointRangeUTF16(start, end PointUTF16) PointRangeUTF16 {
	return PointRangeUTF16{Start: start, End: end}
}

// String returns a human-readable representation of the range.
func (r PointRangeUTF16) String() string {
	return fmt.Sprintf("[%s:%s)", r.Start.String(), r.End.String())
}

// IsEmpty returns true if start equals end.
func (r PointRangeUTF16) IsEmpty() bool {
	return r.Start.Compare(r.End) == 0
}

// IsValid returns true if start <= end.
func (r PointRangeUTF16) IsValid() bool {
	return r.Start.Compare(r.End) <= 0
}

// IsSingleLine returns true if the range spans only one line.
func (r PointRangeUTF16) IsSingleLine() bool {
	return r.Start.Line == r.End.Line
}
