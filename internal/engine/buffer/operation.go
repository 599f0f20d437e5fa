package buffer

import (
	"github.com/dshills/fabric/internal/engine/clock"
)

// FullOffsetRange is a half-open range in the full-offset space (spec.md
// §3: "ranges are full offsets — positions in the concatenation of
// visible + tombstoned text under that version").
type FullOffsetRange struct {
	Start FullOffset
	End   FullOffset
}

// InsertionTimestamp identifies the edit that produced a fragment: its
// Local stamp (used for causal observation and undo bookkeeping) and its
// Lamport stamp (used for the concurrent-insertion tie-break, spec.md
// §4.3.4).
type InsertionTimestamp struct {
	Local   clock.Local
	Lamport clock.Lamport
}

// EditOperation is the value-typed message for a local or remote edit
// (spec.md §3). NewTexts holds one string per entry in Ranges: spec.md
// §4.3.3/§4.3.4 insert "the inserted text (if any)" immediately before
// each range's deleted span, so a multi-range edit that inserts
// different text at each range must carry that text per range rather
// than as a single concatenated string — collapsing to one NewText
// would make applyRemoteEdit insert the same (wrong) text at every
// range on a peer, diverging from the local result.
type EditOperation struct {
	Timestamp InsertionTimestamp
	Version   clock.Version
	Ranges    []FullOffsetRange
	NewTexts  []string
}

// LamportStamp implements opqueue.Op.
func (op EditOperation) LamportStamp() clock.Lamport { return op.Timestamp.Lamport }

// UndoOperation is the value-typed message for an undo/redo (spec.md §3).
// Lamport is not named in the distilled spec's field list but is required
// by the deferred-operation queue's "apply in Lamport order" rule
// (spec.md §4.3.7); recovered from original_source/text.rs's
// UndoOperation, which carries exactly this field.
type UndoOperation struct {
	ID      clock.Local
	Lamport clock.Lamport
	Counts  map[clock.Local]uint32
	Ranges  []FullOffsetRange
	Version clock.Version
}

// LamportStamp implements opqueue.Op.
func (op UndoOperation) LamportStamp() clock.Lamport { return op.Lamport }

// Operation is the tagged union transported between replicas: exactly
// one of Edit or Undo is set. Transport layers may add further variants
// (selection broadcasts, presence) as a superset; this core ignores
// anything it does not recognize.
type Operation struct {
	Edit *EditOperation
	Undo *UndoOperation
}

// LamportStamp implements opqueue.Op.
func (op Operation) LamportStamp() clock.Lamport {
	if op.Edit != nil {
		return op.Edit.LamportStamp()
	}
	if op.Undo != nil {
		return op.Undo.LamportStamp()
	}
	return clock.Lamport{}
}

// ReplicaID returns the replica that produced this operation.
func (op Operation) ReplicaID() clock.ReplicaID {
	if op.Edit != nil {
		return op.Edit.Timestamp.Local.ReplicaID
	}
	if op.Undo != nil {
		return op.Undo.ID.ReplicaID
	}
	return 0
}

// LocalStamp returns the Local stamp identifying this operation.
func (op Operation) LocalStamp() clock.Local {
	if op.Edit != nil {
		return op.Edit.Timestamp.Local
	}
	if op.Undo != nil {
		return op.Undo.ID
	}
	return clock.Local{}
}

// mergeRanges merges a newly edited full-offset range into a transaction's
// cumulative range set, unioning any overlapping/adjacent spans (spec.md
// §4.4: "the merge applies an insertion-length delta and unions
// overlapping spans"). Passed to history.New as the range-merge callback.
func mergeRanges(existing []FullOffsetRange, add FullOffsetRange) []FullOffsetRange {
	all := make([]FullOffsetRange, 0, len(existing)+1)
	all = append(all, existing...)
	all = append(all, add)
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j-1].Start > all[j].Start; j-- {
			all[j-1], all[j] = all[j], all[j-1]
		}
	}

	out := all[:0:0]
	for _, r := range all {
		if len(out) > 0 && r.Start <= out[len(out)-1].End {
			if r.End > out[len(out)-1].End {
				out[len(out)-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}
