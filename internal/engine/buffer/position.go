package buffer

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   uint32 // 0-indexed line number
	Column uint32 // 0-indexed column (byte offset within line)
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool { return p.Compare(other) < 0 }

// After returns true if p comes after other.
func (p Point) After(other Point) bool { return p.Compare(other) > 0 }

// IsZero returns true if this is the zero point (0:0).
func (p Point) IsZero() bool { return p.Line == 0 && p.Column == 0 }

// PointUTF16 represents a line and column position where the column is
// measured in UTF-16 code units, for clients (e.g. LSP) that report
// positions in that space (spec.md §6).
type PointUTF16 struct {
	Line   uint32
	Column uint32
}

// String returns a human-readable representation of the point.
func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p PointUTF16) Compare(other PointUTF16) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p PointUTF16) Before(other PointUTF16) bool { return p.Compare(other) < 0 }

// After returns true if p comes after other.
func (p PointUTF16) After(other PointUTF16) bool { return p.Compare(other) > 0 }

// IsZero returns true if this is the zero point (0:0).
func (p PointUTF16) IsZero() bool { return p.Line == 0 && p.Column == 0 }

// utf16ColumnFromString counts UTF-16 code units in a string. The string
// is first normalized to NFC so that a combining-mark sequence counts
// the same number of UTF-16 units regardless of whether the caller's
// text arrived already composed or decomposed — LSP-style clients
// (spec.md §1's named external collaborator for UTF-16 positions)
// otherwise disagree with each other on combining characters.
func utf16ColumnFromString(s string) uint32 {
	s = norm.NFC.String(s)
	var col uint32
	for _, r := range s {
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column to a byte offset
// within line.
func byteOffsetFromUTF16Column(line string, utf16Col uint32) int {
	var col uint32
	var byteOffset int
	for _, r := range line {
		if col >= utf16Col {
			break
		}
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		byteOffset += utf8.RuneLen(r)
	}
	return byteOffset
}
