// Package sharded implements a lock-partitioned bidirectional id map.
//
// Original ids are distributed over a power-of-two number of shards
// (nextPowerOfTwo(concurrency*4)) by a seedless spreading hash. Each shard is
// a mutex-guarded map from original id to mapped id. Mapped ids are handed
// out from a single atomic counter, so the finished map is a dense
// permutation of [0, n).
//
// Two builders exist:
//
//   - SequentialBuilder assigns one id per call and reports duplicates with
//     the negative encoding -(existing)-1.
//   - BatchedBuilder reserves contiguous id ranges per batch and hands each
//     worker a reusable Batch. In override mode Batch.Insert replaces the
//     caller's original ids with the ids it assigned.
//
// Build copies every shard into a dense reverse array (mapped -> original)
// and returns an immutable Map that is safe for unlimited concurrent reads.
//
// A shard lock is held for the insertion of one id only, never for a whole
// batch.
package sharded
