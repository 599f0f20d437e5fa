// Package clock implements the logical-time primitives shared by every
// replica of a buffer: per-replica local stamps, Lamport stamps, and a
// vector-clock Version tracking the highest observed stamp per replica.
//
// # Basic usage
//
//	lc := clock.NewLocalClock(replicaID)
//	lamport := clock.NewLamportClock(replicaID)
//
//	stamp := lc.Tick()       // advance this replica's local counter
//	ts := lamport.Tick()     // advance this replica's Lamport counter
//
//	var v clock.Version
//	v.Observe(stamp)
//	if v.ObservedAll(otherVersion) { ... }
package clock
