package hash

import "github.com/spaolacci/murmur3"

// Murmur3Hasher is the concrete 128-bit non-cryptographic hasher the
// indexing strategy is built against. It is the "external collaborator"
// hash named in spec.md §1/§9: stable across processes, not
// cryptographically strong, and fast.
type Murmur3Hasher struct {
	seed uint32
}

// NewMurmur3Hasher returns a Murmur3Hasher seeded with seed. Two filters
// sharing a compatibility class must use the same seed, since the indexing
// strategy ordinal recorded in the serial form gates compatibility but the
// seed is not itself part of that form — callers persisting across
// processes should fix it at a known constant.
func NewMurmur3Hasher(seed uint32) *Murmur3Hasher {
	return &Murmur3Hasher{seed: seed}
}

// DefaultMurmur3Seed is the seed used by filters constructed without an
// explicit hasher.
const DefaultMurmur3Seed = 0x5bd1e995

func (m *Murmur3Hasher) Hash128(data []byte) (uint64, uint64) {
	return murmur3.Sum128WithSeed(data, m.seed)
}

func (m *Murmur3Hasher) Hash32(data []byte) uint32 {
	return murmur3.Sum32WithSeed(data, m.seed)
}

var _ Hasher = (*Murmur3Hasher)(nil)
