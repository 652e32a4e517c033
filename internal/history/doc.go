// Package history records undo/redo checkpoints of the pipeline graph.
//
// Manager is a bounded, linear sequence of graph snapshots plus a cursor
// pointing at the entry that matches the live state. Checkpoint truncates
// everything after the cursor before appending, so a fresh edit discards any
// redo branch. Once the bound is exceeded the oldest entry is evicted.
//
// Every entry is a deep copy made on the way in, and Undo/Redo hand out deep
// copies on the way out, so neither the live graph nor a caller can reach a
// recorded snapshot.
//
// Debouncer is the cancellable deferred task used to coalesce rapid edits
// (typing into a field) into one checkpoint: each Schedule cancels the task
// in flight and re-arms it, so at most one run happens per quiet period.
//
// Manager is not safe for concurrent use; the owning store serializes access.
package history
