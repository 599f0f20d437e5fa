package buffer

import (
	"unicode/utf8"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/rope"
)

// BufferSnapshot is a read-only view of a buffer's visible text at one
// instant (spec.md §5/§9: "reads never block writes" is cheap here
// because rope.Rope is itself persistent — every mutating rope method
// returns a new value sharing untouched structure with the old one, so
// capturing the current rope value is already an O(1), race-free
// snapshot; nothing further needs copying).
type BufferSnapshot struct {
	text    rope.Rope
	version clock.Version
}

// Snapshot captures the buffer's current visible text and version.
func (b *Buffer) Snapshot() BufferSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return BufferSnapshot{text: b.visible, version: b.version.Clone()}
}

// Version returns the version this snapshot was taken at.
func (s BufferSnapshot) Version() clock.Version { return s.version }

// Text returns the full snapshot content.
func (s BufferSnapshot) Text() string { return s.text.String() }

// Slice returns the text in [start, end).
func (s BufferSnapshot) Slice(start, end rope.ByteOffset) string {
	return s.text.Slice(start, end)
}

// Len returns the snapshot's byte length.
func (s BufferSnapshot) Len() rope.ByteOffset { return s.text.Len() }

// IsEmpty reports whether the snapshot has no text.
func (s BufferSnapshot) IsEmpty() bool { return s.text.IsEmpty() }

// LineCount returns the number of lines.
func (s BufferSnapshot) LineCount() uint32 { return s.text.LineCount() }

// LineText returns the text of a line, without its terminator.
func (s BufferSnapshot) LineText(line uint32) string { return s.text.LineText(line) }

// LineStartOffset returns the byte offset of a line's start.
func (s BufferSnapshot) LineStartOffset(line uint32) rope.ByteOffset {
	return s.text.LineStartOffset(line)
}

// LineEndOffset returns the byte offset of a line's end (before its
// terminator).
func (s BufferSnapshot) LineEndOffset(line uint32) rope.ByteOffset {
	return s.text.LineEndOffset(line)
}

// ByteAt returns the byte at offset.
func (s BufferSnapshot) ByteAt(offset rope.ByteOffset) (byte, bool) {
	return s.text.ByteAt(offset)
}

// RuneAt decodes the rune starting at offset, or utf8.RuneError with
// size 0 if offset is out of range.
func (s BufferSnapshot) RuneAt(offset rope.ByteOffset) (rune, int) {
	length := s.text.Len()
	if offset >= length {
		return utf8.RuneError, 0
	}
	end := offset + 4
	if end > length {
		end = length
	}
	return utf8.DecodeRuneInString(s.text.Slice(offset, end))
}

// OffsetToPoint converts a byte offset to a line/column position.
func (s BufferSnapshot) OffsetToPoint(offset rope.ByteOffset) Point {
	p := s.text.OffsetToPoint(offset)
	return Point{Line: p.Line, Column: p.Column}
}

// PointToOffset converts a line/column position to a byte offset.
func (s BufferSnapshot) PointToOffset(p Point) rope.ByteOffset {
	return s.text.PointToOffset(rope.Point{Line: p.Line, Column: p.Column})
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 line/column
// position, for LSP-facing callers.
func (s BufferSnapshot) OffsetToPointUTF16(offset rope.ByteOffset) PointUTF16 {
	p := s.text.OffsetToPoint(offset)
	lineStart := s.text.LineStartOffset(p.Line)
	col := utf16ColumnFromString(s.text.Slice(lineStart, offset))
	return PointUTF16{Line: p.Line, Column: col}
}

// PointUTF16ToOffset converts a UTF-16 line/column position to a byte
// offset.
func (s BufferSnapshot) PointUTF16ToOffset(p PointUTF16) rope.ByteOffset {
	lineStart := s.text.LineStartOffset(p.Line)
	lineEnd := s.text.LineEndOffset(p.Line)
	byteCol := byteOffsetFromUTF16Column(s.text.Slice(lineStart, lineEnd), p.Column)
	return lineStart + rope.ByteOffset(byteCol)
}

// Chunks returns an iterator over the snapshot's underlying chunks.
func (s BufferSnapshot) Chunks() *rope.ChunkIterator { return s.text.Chunks() }

// Lines returns an iterator over the snapshot's lines.
func (s BufferSnapshot) Lines() *rope.LineIterator { return s.text.Lines() }

// Runes returns an iterator over the snapshot's runes.
func (s BufferSnapshot) Runes() *rope.RuneIterator { return s.text.Runes() }

// Bytes returns an iterator over the snapshot's bytes.
func (s BufferSnapshot) Bytes() *rope.ByteIterator { return s.text.Bytes() }

// ContainsStrAt reports whether needle occurs at offset, without slicing
// and allocating the candidate substring when it plainly cannot match
// (needle longer than the remaining text).
func (s BufferSnapshot) ContainsStrAt(offset rope.ByteOffset, needle string) bool {
	if needle == "" {
		return offset <= s.Len()
	}
	end := offset + rope.ByteOffset(len(needle))
	if end > s.Len() {
		return false
	}
	return s.text.Slice(offset, end) == needle
}

// IsLineBlank reports whether line contains only whitespace.
func (s BufferSnapshot) IsLineBlank(line uint32) bool {
	for _, r := range s.LineText(line) {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

// IndentColumnForLine returns the byte column of the first non-whitespace
// rune on line, or the line's length if it is blank.
func (s BufferSnapshot) IndentColumnForLine(line uint32) uint32 {
	text := s.LineText(line)
	for i, r := range text {
		if r != ' ' && r != '\t' {
			return uint32(i)
		}
	}
	return uint32(len(text))
}
