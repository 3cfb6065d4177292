// Package harness sweeps compression tools over a corpus of WebAssembly
// modules and verifies every round trip byte for byte.
//
// # Sweeps
//
// A Sweep pairs each tool with each corpus entry and drives the pair
// through a fixed sequence of stages:
//
//	Pending -> Decoded -> Compressed -> Decompressed -> Verified | Failed
//
// Stages within a pair are strictly sequential; independent pairs run on
// a worker pool. Each pair copies its corpus entry into a scratch file
// and lets the tool compress and decompress that copy in place, so the
// corpus itself is never written to. A pair fails on the first stage
// error and carries it in the Result; one failing pair never stops the
// rest of the sweep.
//
// Cancellation flows through the context handed to Run. External tools
// inherit it, so a cancelled sweep does not leak child processes. Pairs
// that were never scheduled stay Pending.
//
// # Verification
//
// A pair is Verified only when the decompressed bytes equal the original
// file exactly. Differences surface as a round-trip mismatch carrying the
// first differing offset and a hex window around it. With Revalidate set,
// the restored bytes are additionally compiled to confirm the runtime
// still accepts them.
package harness
