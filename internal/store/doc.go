// Package store keeps the poll history of the running session in memory.
//
// This package is internal to bridgewatch. [MemoryStore] records one
// [PollRecord] per iteration together with the session [Outcome], and fans
// new records out to subscribers (used by the status server's SSE stream).
//
// Nothing is written to disk: history lives only as long as the process.
// Subscribers receive records via buffered channels with non-blocking sends,
// so a slow subscriber misses records rather than stalling the poll loop.
package store
