package hash

import "testing"

func TestMurmur3HasherDeterministic(t *testing.T) {
	h := NewMurmur3Hasher(DefaultMurmur3Seed)
	lo1, hi1 := h.Hash128([]byte("hello"))
	lo2, hi2 := h.Hash128([]byte("hello"))
	if lo1 != lo2 || hi1 != hi2 {
		t.Fatalf("Hash128 not deterministic: (%x,%x) != (%x,%x)", lo1, hi1, lo2, hi2)
	}

	a := h.Hash32([]byte{1, 2, 3})
	b := h.Hash32([]byte{1, 2, 3})
	if a != b {
		t.Fatalf("Hash32 not deterministic: %x != %x", a, b)
	}
}

func TestMurmur3HasherDiffers(t *testing.T) {
	h := NewMurmur3Hasher(DefaultMurmur3Seed)
	lo1, hi1 := h.Hash128([]byte("foo"))
	lo2, hi2 := h.Hash128([]byte("bar"))
	if lo1 == lo2 && hi1 == hi2 {
		t.Fatalf("expected different digests for different inputs")
	}
}

func TestMurmur3HasherSeedChangesDigest(t *testing.T) {
	a := NewMurmur3Hasher(1)
	b := NewMurmur3Hasher(2)
	lo1, hi1 := a.Hash128([]byte("seeded"))
	lo2, hi2 := b.Hash128([]byte("seeded"))
	if lo1 == lo2 && hi1 == hi2 {
		t.Fatalf("expected seed to change digest")
	}
}
