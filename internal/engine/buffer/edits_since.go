package buffer

import (
	"context"

	"github.com/dshills/fabric/internal/engine/clock"
	"github.com/dshills/fabric/internal/engine/rope"
	"github.com/dshills/fabric/internal/engine/subscription"
)

// fragmentKind classifies a fragment's visibility transition between two
// versions, for EditsSince's run-length merging.
type fragmentKind int

const (
	kindUnchanged fragmentKind = iota
	kindAppeared               // invisible (or absent) at `since`, visible now
	kindVanished               // visible at `since`, invisible now
)

// EditsSince implements spec.md §4.5: reports, as an ordered Patch, every
// fragment whose visibility has changed between the historical version
// since and the buffer's current state. Contiguous fragments of the same
// kind are merged into a single Edit, the same way a real editor wants
// one "500 lines replaced" notification rather than 500 single-line
// ones.
func (b *Buffer) EditsSince(since clock.Version) subscription.Patch[rope.ByteOffset] {
	b.mu.RLock()
	defer b.mu.RUnlock()

	items := b.fragments.Items()
	var patch subscription.Patch[rope.ByteOffset]

	var sinceOff, curOff rope.ByteOffset
	runKind := kindUnchanged
	runSinceStart := rope.ByteOffset(0)
	runCurStart := rope.ByteOffset(0)
	runLen := 0

	flush := func() {
		if runKind == kindUnchanged || runLen == 0 {
			runLen = 0
			return
		}
		switch runKind {
		case kindAppeared:
			patch = append(patch, subscription.Edit[rope.ByteOffset]{
				Old: subscription.Range[rope.ByteOffset]{Start: runSinceStart, End: runSinceStart},
				New: runCurStart + rope.ByteOffset(runLen),
			})
		case kindVanished:
			patch = append(patch, subscription.Edit[rope.ByteOffset]{
				Old: subscription.Range[rope.ByteOffset]{Start: runSinceStart, End: runSinceStart + rope.ByteOffset(runLen)},
				New: runCurStart,
			})
		}
		runLen = 0
		runKind = kindUnchanged
	}

	for _, f := range items {
		wasVis := b.wasVisible(f, since)
		isVis := f.Visible
		var kind fragmentKind
		switch {
		case wasVis == isVis:
			kind = kindUnchanged
		case isVis:
			kind = kindAppeared
		default:
			kind = kindVanished
		}

		if kind != runKind {
			flush()
			runKind = kind
			runSinceStart = sinceOff
			runCurStart = curOff
		}
		if kind != kindUnchanged {
			runLen += f.Len
		}

		if wasVis {
			sinceOff += rope.ByteOffset(f.Len)
		}
		if isVis {
			curOff += rope.ByteOffset(f.Len)
		}
	}
	flush()

	return patch
}

// WaitForEdits blocks until every edit identified in ids has been
// locally applied, or ctx is cancelled (spec.md §6).
func (b *Buffer) WaitForEdits(ctx context.Context, ids []clock.Local) error {
	return b.waiter.Wait(ctx, ids, b.CanResolve)
}
