package buffer

import (
	"time"

	"github.com/dshills/fabric/internal/engine/history"
)

// LineEnding names a line ending style. A Buffer records the style it was
// configured with; text is spliced into the fragment store as given and is
// not converted to that style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingLF:
		return "\\n"
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingLF:
		return "\n"
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithLineEnding records the buffer's line ending style; base and edited
// text are not converted to it.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) { b.lineEnding = le }
}

// WithTabWidth sets the column width used when expanding tabs for
// display (advisory only; stored text never has tabs expanded).
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithLF configures the buffer to use Unix line endings (\n).
func WithLF() Option { return WithLineEnding(LineEndingLF) }

// WithCRLF configures the buffer to use Windows line endings (\r\n).
func WithCRLF() Option { return WithLineEnding(LineEndingCRLF) }

// WithCR configures the buffer to use old Mac line endings (\r).
func WithCR() Option { return WithLineEnding(LineEndingCR) }

// DetectLineEnding returns a LineEnding based on the most common line
// ending in text. Returns LineEndingLF if none are found.
func DetectLineEnding(text string) LineEnding {
	var lfCount, crlfCount, crCount int

	i := 0
	for i < len(text) {
		if i+1 < len(text) && text[i] == '\r' && text[i+1] == '\n' {
			crlfCount++
			i += 2
		} else if text[i] == '\r' {
			crCount++
			i++
		} else if text[i] == '\n' {
			lfCount++
			i++
		} else {
			i++
		}
	}

	if crlfCount >= lfCount && crlfCount >= crCount {
		if crlfCount > 0 {
			return LineEndingCRLF
		}
	}
	if crCount >= lfCount && crCount >= crlfCount {
		if crCount > 0 {
			return LineEndingCR
		}
	}

	return LineEndingLF
}

// WithDetectedLineEnding sets the line ending by sniffing content.
func WithDetectedLineEnding(text string) Option {
	return WithLineEnding(DetectLineEnding(text))
}

// WithGroupInterval overrides the default 300ms transaction-grouping
// idle window (spec.md §4.4).
func WithGroupInterval(d time.Duration) Option {
	return func(b *Buffer) { b.groupInterval = d }
}

// WithReadOnly marks the buffer read-only: Edit, ApplyOps, Undo and Redo
// all fail with ErrReadOnly. Useful for a buffer that only ever ingests
// a snapshot and replays remote history for inspection.
func WithReadOnly() Option {
	return func(b *Buffer) { b.readOnly = true }
}

// WithHistory installs a caller-constructed history, overriding the one
// New would otherwise build from groupInterval. Mainly useful for tests
// that want to pre-seed undo/redo stacks.
func WithHistory(h *history.History[FullOffsetRange]) Option {
	return func(b *Buffer) { b.history = h }
}
