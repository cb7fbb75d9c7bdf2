// Package bitpack implements the fixed-size bucketed fingerprint table that
// backs a cuckoo filter: B buckets of E entries of f bits each, packed into
// a contiguous array of 64-bit words (spec.md §4.1, component C1).
//
// It generalizes the teacher's fixed 4-slot/8-bit-fingerprint uint32
// bucket packing (ielm-neostd pkg/collections/filter/cuckoo.go) to an
// arbitrary (B, E, f) triple spanning 64-bit words instead of one word per
// bucket.
package bitpack

import (
	"math"
	"math/bits"
)

// MaxWords bounds the backing array at 2^31 64-bit words (spec.md §9,
// "platform's maximum contiguous allocation").
const MaxWords = 1 << 31

// Table is a packed array of B buckets of E entries of f bits each.
type Table struct {
	words []uint64
	b     uint64 // number of buckets
	e     uint8  // entries per bucket
	f     uint8  // bits per entry

	size     uint64 // number of non-empty slots
	checksum uint64 // sum of all non-empty slot values
}

// New allocates a zero-initialized table for B buckets of E entries of f
// bits each. It returns false if the required word count would exceed
// MaxWords.
func New(b uint64, e uint8, f uint8) (*Table, bool) {
	words := RequiredWords(b, e, f)
	if words > MaxWords {
		return nil, false
	}
	return &Table{
		words: make([]uint64, words),
		b:     b,
		e:     e,
		f:     f,
	}, true
}

func (t *Table) Buckets() uint64 { return t.b }
func (t *Table) Entries() uint8  { return t.e }
func (t *Table) Bits() uint8     { return t.f }
func (t *Table) Size() uint64    { return t.size }
func (t *Table) Checksum() uint64 { return t.checksum }
func (t *Table) WordCount() int  { return len(t.words) }

// Words returns the raw backing words, in order, for serialization. Callers
// must not mutate the returned slice.
func (t *Table) Words() []uint64 { return t.words }

// mask is the all-ones mask of the table's entry width.
func (t *Table) mask() uint64 {
	if t.f == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << t.f) - 1
}

func (t *Table) offset(b uint64, s uint8) uint64 {
	return (b*uint64(t.e) + uint64(s)) * uint64(t.f)
}

// ReadEntry returns the f-bit value stored at (bucket b, slot s).
func (t *Table) ReadEntry(b uint64, s uint8) uint32 {
	off := t.offset(b, s)
	word := off / 64
	bit := off % 64
	lo := t.words[word] >> bit

	if bit+uint64(t.f) <= 64 {
		return uint32(lo & t.mask())
	}

	// Straddles into the next word. Guard read-past-end defensively
	// (spec.md §4.1 edge case); correct dimensioning never triggers it.
	var hi uint64
	if int(word)+1 < len(t.words) {
		hi = t.words[word+1]
	}
	bitsFromLo := 64 - bit
	combined := lo | (hi << bitsFromLo)
	return uint32(combined & t.mask())
}

// WriteEntry stores v (masked to f bits) at (bucket b, slot s) and returns
// the prior value. It updates size and checksum bookkeeping.
func (t *Table) WriteEntry(b uint64, s uint8, v uint32) uint32 {
	masked := uint64(v) & t.mask()
	off := t.offset(b, s)
	word := off / 64
	bit := off % 64

	old := uint64(t.ReadEntry(b, s))

	if bit+uint64(t.f) <= 64 {
		clear := t.mask() << bit
		t.words[word] = (t.words[word] &^ clear) | (masked << bit)
	} else {
		bitsFromLo := 64 - bit
		loMask := t.mask() << bit
		t.words[word] = (t.words[word] &^ loMask) | (masked << bit)
		if int(word)+1 < len(t.words) {
			hiBits := uint64(t.f) - bitsFromLo
			hiMask := (uint64(1) << hiBits) - 1
			t.words[word+1] = (t.words[word+1] &^ hiMask) | (masked >> bitsFromLo)
		}
	}

	switch {
	case old == 0 && masked != 0:
		t.size++
	case old != 0 && masked == 0:
		t.size--
	}
	t.checksum += masked - old
	return uint32(old)
}

// FindSlot returns the first slot in [0,E) whose entry equals fp, or -1.
func (t *Table) FindSlot(b uint64, fp uint32) int {
	for s := uint8(0); s < t.e; s++ {
		if t.ReadEntry(b, s) == fp {
			return int(s)
		}
	}
	return -1
}

// Count returns the number of slots in bucket b equal to fp.
func (t *Table) Count(b uint64, fp uint32) int {
	n := 0
	for s := uint8(0); s < t.e; s++ {
		if t.ReadEntry(b, s) == fp {
			n++
		}
	}
	return n
}

// Has reports whether bucket b holds fp in any slot.
func (t *Table) Has(b uint64, fp uint32) bool {
	return t.FindSlot(b, fp) >= 0
}

// SwapFirst overwrites the first slot in bucket b equal to vOut with vIn,
// returning true on success.
func (t *Table) SwapFirst(b uint64, vIn, vOut uint32) bool {
	s := t.FindSlot(b, vOut)
	if s < 0 {
		return false
	}
	t.WriteEntry(b, uint8(s), vIn)
	return true
}

// SwapAt unconditionally overwrites slot s of bucket b with vIn, returning
// the prior value.
func (t *Table) SwapAt(b uint64, s uint8, vIn uint32) uint32 {
	return t.WriteEntry(b, s, vIn)
}

// FirstEmpty returns the first empty slot index in bucket b, or -1.
func (t *Table) FirstEmpty(b uint64) int {
	return t.FindSlot(b, 0)
}

// Reset zero-fills the backing storage in place and resets bookkeeping,
// reusing the existing allocation (spec.md §5, "clear reuses existing
// storage").
func (t *Table) Reset() {
	for i := range t.words {
		t.words[i] = 0
	}
	t.size = 0
	t.checksum = 0
}

// Clone returns an independent deep copy sharing no mutable state.
func (t *Table) Clone() *Table {
	words := make([]uint64, len(t.words))
	copy(words, t.words)
	return &Table{
		words:    words,
		b:        t.b,
		e:        t.e,
		f:        t.f,
		size:     t.size,
		checksum: t.checksum,
	}
}

// FromWords reconstructs a table from a raw word array and dimensioning,
// recomputing size and checksum. Used by the codec on deserialization.
func FromWords(words []uint64, b uint64, e uint8, f uint8) *Table {
	t := &Table{words: words, b: b, e: e, f: f}
	for bucket := uint64(0); bucket < b; bucket++ {
		for s := uint8(0); s < e; s++ {
			v := uint64(t.ReadEntry(bucket, s))
			if v != 0 {
				t.size++
				t.checksum += v
			}
		}
	}
	return t
}

// RequiredWords returns ceil(B*E*f / 64), the word count for a table of the
// given dimensioning, or math.MaxUint64 if B*E*f overflows 64 bits.
func RequiredWords(b uint64, e uint8, f uint8) uint64 {
	hi, total := bits.Mul64(b, uint64(e)*uint64(f))
	if hi != 0 {
		return math.MaxUint64
	}
	return total/64 + (total%64+63)/64
}

