// Package hash provides stable position hashing, so that "random" choices
// made while painting tiles are a pure function of seed & position.
package hash

// Hash32 mixes 32-bit input into a well-distributed 32-bit output.
func Hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// Hash2 returns a stable hash for 2D integer co-ords + seed.
func Hash2(seed uint64, x, y int) uint32 {
	h := Hash32(uint32(seed)) ^ Hash32(uint32(seed>>32)+0x9e3779b9)
	h ^= uint32(int32(x)) * 0x9e3779b1
	h = Hash32(h)
	h ^= uint32(int32(y)) * 0x85ebca6b
	return Hash32(h)
}

// Hash64 returns a stable 64 bit hash for 2D integer co-ords + seed.
func Hash64(seed uint64, x, y int) uint64 {
	hi := Hash2(seed, x, y)
	lo := Hash2(seed^0xc2b2ae3d27d4eb4f, x, y)
	return uint64(hi)<<32 | uint64(lo)
}

// Salt derives a new seed from seed, so separate choices made at the same
// co-ords don't line up.
func Salt(seed, salt uint64) uint64 {
	lo := Hash32(uint32(seed) ^ Hash32(uint32(salt)))
	hi := Hash32(uint32(seed>>32) ^ Hash32(uint32(salt>>32)+0x9e3779b9) ^ lo)
	return uint64(hi)<<32 | uint64(lo)
}

// Intn returns a stable number in [0, n) for the given seed & co-ords.
// n must be > 0.
func Intn(seed uint64, x, y, n int) int {
	return int(Hash2(seed, x, y) % uint32(n))
}
