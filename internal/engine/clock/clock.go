package clock

// ReplicaID identifies a participant. The spec calls for a 16-bit id;
// kept as uint16 so wire encodings can pick a fixed width without overflow
// checks at the boundary.
type ReplicaID uint16

// Seq is a per-replica monotonic counter.
type Seq uint32

// Local is a timestamp unique to one event on one replica: (replica, seq).
// Local stamps identify edits, transactions and insertions; they never
// collide because seq strictly increases per replica.
type Local struct {
	ReplicaID ReplicaID
	Seq       Seq
}

// Less reports whether l sorts before other. Used only for deterministic
// iteration order (e.g. map key ordering in counts); carries no CRDT
// significance on its own.
func (l Local) Less(other Local) bool {
	if l.ReplicaID != other.ReplicaID {
		return l.ReplicaID < other.ReplicaID
	}
	return l.Seq < other.Seq
}

// LocalClock hands out strictly increasing Local stamps for one replica.
type LocalClock struct {
	ReplicaID ReplicaID
	seq       Seq
}

// NewLocalClock creates a clock for the given replica, seq starting at 0.
func NewLocalClock(replica ReplicaID) *LocalClock {
	return &LocalClock{ReplicaID: replica}
}

// Tick advances the clock and returns the new stamp.
func (c *LocalClock) Tick() Local {
	c.seq++
	return Local{ReplicaID: c.ReplicaID, Seq: c.seq}
}

// Max reports the highest seq issued so far.
func (c *LocalClock) Max() Seq { return c.seq }

// Lamport is a Lamport timestamp: (replica, seq), where seq is bumped to
// max(local, observed)+1 whenever a foreign stamp is observed.
type Lamport struct {
	ReplicaID ReplicaID
	Seq       Seq
}

// Less orders Lamport stamps by seq first, replica id as tie-break — the
// concurrency rule in spec.md §4.3.4: lower Lamport wins, ties broken by
// smaller replica id.
func (l Lamport) Less(other Lamport) bool {
	if l.Seq != other.Seq {
		return l.Seq < other.Seq
	}
	return l.ReplicaID < other.ReplicaID
}

// LamportClock hands out Lamport stamps for one replica and folds in
// observed remote stamps.
type LamportClock struct {
	ReplicaID ReplicaID
	seq       Seq
}

// NewLamportClock creates a Lamport clock for the given replica.
func NewLamportClock(replica ReplicaID) *LamportClock {
	return &LamportClock{ReplicaID: replica}
}

// Tick advances the clock for a local event and returns the new stamp.
func (c *LamportClock) Tick() Lamport {
	c.seq++
	return Lamport{ReplicaID: c.ReplicaID, Seq: c.seq}
}

// Observe folds a remote Lamport seq into the local clock: seq becomes
// max(local, observed)+1, then is assigned to a new local event.
func (c *LamportClock) Observe(remoteSeq Seq) Lamport {
	if remoteSeq > c.seq {
		c.seq = remoteSeq
	}
	c.seq++
	return Lamport{ReplicaID: c.ReplicaID, Seq: c.seq}
}

// Witness raises the clock's watermark to at least remoteSeq without
// minting a new local event (invariant 4: "after observing a remote
// stamp s, lamport.seq >= s.seq"). Used when applying a remote operation,
// as opposed to Observe, which folds in a remote stamp while also
// producing a new local event.
func (c *LamportClock) Witness(remoteSeq Seq) {
	if remoteSeq > c.seq {
		c.seq = remoteSeq
	}
}

// Version is a vector clock: the highest Local seq observed per replica.
// The zero value is the empty version (nothing observed).
type Version struct {
	seqs map[ReplicaID]Seq
}

// NewVersion creates an empty version.
func NewVersion() Version {
	return Version{seqs: make(map[ReplicaID]Seq)}
}

// Clone returns an independent copy.
func (v Version) Clone() Version {
	out := make(map[ReplicaID]Seq, len(v.seqs))
	for r, s := range v.seqs {
		out[r] = s
	}
	return Version{seqs: out}
}

// Observe records that stamp has been seen, raising the replica's
// watermark if stamp.Seq is newer.
func (v *Version) Observe(stamp Local) {
	if v.seqs == nil {
		v.seqs = make(map[ReplicaID]Seq)
	}
	if cur, ok := v.seqs[stamp.ReplicaID]; !ok || stamp.Seq > cur {
		v.seqs[stamp.ReplicaID] = stamp.Seq
	}
}

// Observed reports whether stamp has been observed by v.
func (v Version) Observed(stamp Local) bool {
	seq, ok := v.seqs[stamp.ReplicaID]
	return ok && seq >= stamp.Seq
}

// Get returns the highest seq observed for replica, or 0 if none.
func (v Version) Get(replica ReplicaID) Seq {
	return v.seqs[replica]
}

// ObservedAll reports whether every stamp observed by other is also
// observed by v (v happens-after-or-equal other).
func (v Version) ObservedAll(other Version) bool {
	for r, s := range other.seqs {
		if v.seqs[r] < s {
			return false
		}
	}
	return true
}

// ObservedAny reports whether v has observed at least the earliest stamp
// recorded in other for some replica: i.e. there exists a replica r with
// other.Get(r) > 0 and v.Get(r) >= other.Get(r). Used to test "v has seen
// at least one of the stamps other tracks" when other holds a per-replica
// minimum rather than a single stamp (spec.md §4.3.2's "any
// min_insertion_version is observed" test).
func (v Version) ObservedAny(other Version) bool {
	for r, s := range other.seqs {
		if s == 0 {
			continue
		}
		if v.seqs[r] >= s {
			return true
		}
	}
	return false
}

// Join returns the pointwise maximum of v and other (least upper bound).
func (v Version) Join(other Version) Version {
	out := v.Clone()
	if out.seqs == nil {
		out.seqs = make(map[ReplicaID]Seq)
	}
	for r, s := range other.seqs {
		if s > out.seqs[r] {
			out.seqs[r] = s
		}
	}
	return out
}

// Meet returns the pointwise minimum of v and other (greatest lower bound).
// Replicas absent from either side contribute 0.
func (v Version) Meet(other Version) Version {
	out := NewVersion()
	for r, s := range v.seqs {
		os := other.seqs[r]
		if os < s {
			s = os
		}
		if s > 0 {
			out.seqs[r] = s
		}
	}
	return out
}

// Equals reports whether v and other observe exactly the same stamps.
func (v Version) Equals(other Version) bool {
	if len(v.seqs) != len(other.seqs) {
		return false
	}
	for r, s := range v.seqs {
		if other.seqs[r] != s {
			return false
		}
	}
	return true
}

// IsEmpty reports whether v has observed nothing.
func (v Version) IsEmpty() bool {
	for _, s := range v.seqs {
		if s > 0 {
			return false
		}
	}
	return true
}

// Single returns the version that has observed exactly one stamp.
func Single(stamp Local) Version {
	return Version{seqs: map[ReplicaID]Seq{stamp.ReplicaID: stamp.Seq}}
}

// MergeMinSparse combines v and other by taking, for each replica present
// in either side, the smaller of the two watermarks (a replica absent
// from one side contributes nothing, rather than forcing the result to
// zero as a dense vector-clock meet would). Used to fold per-fragment
// singleton insertion versions into a subtree's "earliest insertion seen
// per replica" summary field (spec.md §4.3.2).
func (v Version) MergeMinSparse(other Version) Version {
	out := v.Clone()
	if out.seqs == nil {
		out.seqs = make(map[ReplicaID]Seq)
	}
	for r, s := range other.seqs {
		if cur, ok := out.seqs[r]; !ok || s < cur {
			out.seqs[r] = s
		}
	}
	return out
}

// Replicas returns the set of replica ids with a non-zero watermark, in
// ascending order, for deterministic iteration.
func (v Version) Replicas() []ReplicaID {
	out := make([]ReplicaID, 0, len(v.seqs))
	for r, s := range v.seqs {
		if s > 0 {
			out = append(out, r)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
