package engine

import (
	"time"

	"github.com/dshills/fabric/internal/engine/buffer"
)

// Option configures an Engine during creation; it is a buffer.Option
// under the hood, so every buffer configuration knob (line ending, tab
// width, group interval, read-only) is available here too.
type Option = buffer.Option

// WithLineEnding records the buffer's line ending style; text is not
// converted to it.
func WithLineEnding(le buffer.LineEnding) Option { return buffer.WithLineEnding(le) }

// WithTabWidth sets the advisory tab-expansion width.
func WithTabWidth(width int) Option { return buffer.WithTabWidth(width) }

// WithGroupInterval overrides the default transaction-grouping idle
// window (spec.md §4.4).
func WithGroupInterval(d time.Duration) Option { return buffer.WithGroupInterval(d) }

// WithReadOnly creates a read-only engine; write operations return
// ErrReadOnly.
func WithReadOnly() Option { return buffer.WithReadOnly() }
