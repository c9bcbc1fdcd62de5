// Package occ implements the optimistic concurrency check applied to every
// versioned task mutation.
//
// A client proves it edited the latest state by echoing the version it read.
// The check is pure: it never merges and never touches storage.
package occ

// Decision is the outcome of a version check.
type Decision int

const (
	// Accept means the client saw the latest stored version.
	Accept Decision = iota
	// Conflict means the stored record changed since the client read it.
	Conflict
)

// String returns a readable name for logs.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Check compares the stored version with the version claimed by the client.
func Check(storedVersion, clientVersion int) Decision {
	if storedVersion == clientVersion {
		return Accept
	}
	return Conflict
}

// Next returns the version a record takes after an accepted mutation.
func Next(version int) int {
	return version + 1
}
