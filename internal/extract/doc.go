// Package extract is the traversal engine of the application. Starting
// from a set of root derivations it recursively describes every derivation
// and its declared build inputs in parallel, deduplicates occurrences by
// store output path, and streams one description per derivation to the
// consumer while the traversal is still running.
//
// # Concurrency Model
//
// Each unit of work is one derivation. Describing a derivation spawns one
// goroutine per unclaimed build input, and the Go scheduler multiplexes
// those goroutines over the machine's threads; a weighted semaphore bounds
// how many external evaluations run at once. Suspension only happens at
// channel sends, semaphore acquisition, and subprocess waits, which block
// the one goroutine involved, never the run globally.
//
// # Shared State
//
// The claim set is the only mutable state shared between units of work.
// Everything else a unit touches is either read-only run configuration or
// a channel endpoint, both safe to share.
//
// # Failure Policy
//
// A derivation that fails to describe is logged and its branch abandoned;
// siblings and ancestors are unaffected. Failures are not memoized: a
// derivation without a claimable output path that fails once will be
// re-attempted every time another path reaches it.
package extract
