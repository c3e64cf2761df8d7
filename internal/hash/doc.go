// Package hash provides the spreading hash used to partition node ids.
//
// # Phi mixing
//
// Original node ids are frequently sequential or clustered (auto-increment
// keys, ids with common high bits). Selecting a shard directly from the low
// bits of such ids concentrates load on a few shards. MixPhi multiplies by
// the 64-bit golden ratio constant and folds the high half into the low half,
// so every input bit influences the low 32 bits:
//
//	h := k * 0x9E3779B97F4A7C15
//	h ^= h >> 32
//
// The function is deterministic and seedless. Shard assignment is therefore
// reproducible across runs, processes and insertion orders.
//
// # Usage
//
//	shift := 32 - log2(numShards)
//	idx := ShardIndex(id, shift, numShards-1)
package hash
