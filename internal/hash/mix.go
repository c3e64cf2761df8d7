package hash

// phiC64 is 2^64 divided by the golden ratio, rounded to an odd number.
const phiC64 = 0x9E3779B97F4A7C15

// MixPhi spreads the bits of k.
func MixPhi(k uint64) uint64 {
	h := k * phiC64
	return h ^ (h >> 32)
}

// ShardIndex selects a shard for id from the top bits of the mixed low word.
// shift is 32 minus log2 of the shard count, mask is the shard count minus one.
func ShardIndex(id int64, shift uint, mask int) int {
	return int(uint32(MixPhi(uint64(id))) >> shift) & mask
}
