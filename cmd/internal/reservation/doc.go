// Package reservation implements the capacity-gated reservation protocol.
//
// A holder asks for a lock on a problem statement (RequestLock), fills in a
// team form, and commits (Commit) by presenting the lock token again. Capacity
// is checked when the lock is issued and checked again at commit, because lock
// tokens are not slots in storage and other holders may have committed in the
// meantime. The commit-time check is the authoritative one.
//
// Stores are not required to serialize count-then-insert across holders, so
// concurrent commits on the last free slot may both succeed. The overshoot is
// bounded by request latency and accepted.
package reservation
