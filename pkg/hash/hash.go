// Package hash defines the 128-bit hash contract the indexing strategy is
// built against (spec.md §4.2, §9 "Hash-function dependency"), decoupled
// from any concrete algorithm so a substitute hasher can be swapped in as
// long as it stays stable across processes and versions for a given
// filter's serialized form.
package hash

// Hasher produces a 128-bit digest of a byte slice, split into two 64-bit
// halves. Implementations must be deterministic: the same bytes must
// produce the same (lo, hi) pair across calls, processes, and versions of
// the implementation, since persisted filters depend on it.
type Hasher interface {
	// Hash128 returns the low and high 64 bits of the element's digest.
	Hash128(data []byte) (lo uint64, hi uint64)

	// Hash32 returns a 32-bit hash of an arbitrary value, used to compute
	// H(fp) in the alternate-index formula (spec.md §4.2).
	Hash32(data []byte) uint32
}
