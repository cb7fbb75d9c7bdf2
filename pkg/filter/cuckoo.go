package filter

import (
	"math"
	"math/rand"
	"reflect"

	"github.com/ielm/cuckoofilter/internal/bitpack"
	"github.com/ielm/cuckoofilter/internal/index"

	ferrors "github.com/ielm/cuckoofilter/errors"
	fhash "github.com/ielm/cuckoofilter/pkg/hash"
)

// maxKicks bounds the eviction depth during insertion (spec.md §4.3, §9).
const maxKicks = 500

// StrategyParitySign is the ordinal of the only indexing strategy this
// package implements: the parity-sign additive alternate index of
// spec.md §4.2, which (unlike the XOR scheme from the Fan et al. paper)
// admits any even bucket count.
const StrategyParitySign int8 = 0

// CuckooFilter is a bit-packed, bucketed cuckoo filter supporting
// insertion, deletion, lookup, and multiset set-theoretic operations
// against a compatible peer (spec.md §2, components C3-C6).
type CuckooFilter[T any] struct {
	table *bitpack.Table

	dims Dimensions

	capacity uint64
	fpp      float64

	strategyOrdinal int8
	hasher          fhash.Hasher
	serializer      Serializer[T]
	rng             *rand.Rand
}

// NewCuckoo creates a cuckoo filter dimensioned for capacity n at target
// false-positive rate eps, using the default murmur3 hasher.
func NewCuckoo[T any](n uint64, eps float64, serializer Serializer[T]) (*CuckooFilter[T], error) {
	return NewCuckooWithHasher(n, eps, serializer, fhash.NewMurmur3Hasher(fhash.DefaultMurmur3Seed))
}

// NewCuckooWithHasher creates a cuckoo filter with an explicit hasher,
// satisfying spec.md §4's "external collaborator" hash dependency.
func NewCuckooWithHasher[T any](n uint64, eps float64, serializer Serializer[T], hasher fhash.Hasher) (*CuckooFilter[T], error) {
	if serializer == nil {
		return nil, nullArgument("serializer")
	}
	dims, err := Dimension(n, eps)
	if err != nil {
		return nil, err
	}
	table, ok := bitpack.New(dims.Buckets, dims.EntriesPerBucket, dims.BitsPerEntry)
	if !ok {
		return nil, ferrors.New(ferrors.InvalidArgument, "required word count exceeds maximum contiguous allocation")
	}

	return &CuckooFilter[T]{
		table:           table,
		dims:            dims,
		capacity:        n,
		fpp:             eps,
		strategyOrdinal: StrategyParitySign,
		hasher:          hasher,
		serializer:      serializer,
		rng:             rand.New(rand.NewSource(1)),
	}, nil
}

func isNilArg[T any](e T) bool {
	v := reflect.ValueOf(e)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

func (cf *CuckooFilter[T]) fingerprintHash(fp uint32) uint32 {
	buf := [4]byte{byte(fp), byte(fp >> 8), byte(fp >> 16), byte(fp >> 24)}
	return cf.hasher.Hash32(buf[:])
}

func (cf *CuckooFilter[T]) altIndexOf(i uint64, fp uint32) uint64 {
	return index.AltIndex(i, fp, cf.dims.Buckets, cf.fingerprintHash)
}

// indexOf computes (primary bucket, fingerprint) for an element (spec.md §4.2).
func (cf *CuckooFilter[T]) indexOf(e T) (uint64, uint32, error) {
	data, err := cf.serializer.Marshal(e)
	if err != nil {
		return 0, 0, ferrors.Wrap(ferrors.InvalidArgument, "failed to serialize element", err)
	}
	lo, _ := cf.hasher.Hash128(data)
	hash1 := uint32(lo)
	hash2 := uint32(lo >> 32)
	i := index.Index(hash1, cf.dims.Buckets)
	fp := index.Fingerprint(hash2, cf.dims.BitsPerEntry)
	return i, fp, nil
}

// Add inserts e, performing bounded-depth eviction if both candidate
// buckets are full (spec.md §4.3). Returns false, with the table
// bit-identical to its pre-call state, if the filter is saturated (P7).
func (cf *CuckooFilter[T]) Add(e T) (bool, error) {
	if isNilArg(e) {
		return false, nullArgument("element")
	}
	i, fp, err := cf.indexOf(e)
	if err != nil {
		return false, err
	}
	return cf.addAt(i, fp), nil
}

// addAt is the element-agnostic insertion primitive shared with the
// multiset peer operations (cuckoo_multiset.go), operating directly on a
// (bucket, fingerprint) pair.
func (cf *CuckooFilter[T]) addAt(i uint64, fp uint32) bool {
	i2 := cf.altIndexOf(i, fp)

	if s := cf.table.FirstEmpty(i); s >= 0 {
		cf.table.WriteEntry(i, uint8(s), fp)
		return true
	}
	if s := cf.table.FirstEmpty(i2); s >= 0 {
		cf.table.WriteEntry(i2, uint8(s), fp)
		return true
	}

	return cf.evict(i, fp)
}

type kickFrame struct {
	bucket  uint64
	slot    uint8
	evicted uint32
}

// evict performs the bounded relocation loop (spec.md §4.3), implemented
// iteratively with an explicit frame stack per spec.md §9's stated
// preference, to bound stack depth at maxKicks. On failure it rolls back
// every swap it performed, in reverse order, so the table ends up
// bit-identical to its state before the call (P7).
func (cf *CuckooFilter[T]) evict(start uint64, fp uint32) bool {
	frames := make([]kickFrame, 0, maxKicks)
	cur := start
	carry := fp

	for depth := 0; depth < maxKicks; depth++ {
		slot := uint8(cf.rng.Intn(int(cf.dims.EntriesPerBucket)))
		evicted := cf.table.SwapAt(cur, slot, carry)
		frames = append(frames, kickFrame{bucket: cur, slot: slot, evicted: evicted})
		if evicted == 0 {
			return true
		}
		carry = evicted
		cur = cf.altIndexOf(cur, carry)
	}

	for k := len(frames) - 1; k >= 0; k-- {
		cf.table.SwapAt(frames[k].bucket, frames[k].slot, frames[k].evicted)
	}
	return false
}

// Contains reports whether e might be in the filter (one-sided error: never
// false for an element currently present, spec.md §4.3 "Lookup").
func (cf *CuckooFilter[T]) Contains(e T) (bool, error) {
	if isNilArg(e) {
		return false, nullArgument("element")
	}
	i, fp, err := cf.indexOf(e)
	if err != nil {
		return false, err
	}
	i2 := cf.altIndexOf(i, fp)
	return cf.table.Has(i, fp) || cf.table.Has(i2, fp), nil
}

// Remove deletes at most one occurrence of e (spec.md §4.3 "Deletion").
// Removing an element never successfully added is a documented terminal
// error state (invariant 6): it may silently evict an unrelated colliding
// fingerprint, producing later false negatives. No panic or corruption
// results either way.
func (cf *CuckooFilter[T]) Remove(e T) (bool, error) {
	if isNilArg(e) {
		return false, nullArgument("element")
	}
	i, fp, err := cf.indexOf(e)
	if err != nil {
		return false, err
	}
	return cf.removeAt(i, fp), nil
}

func (cf *CuckooFilter[T]) removeAt(i uint64, fp uint32) bool {
	i2 := cf.altIndexOf(i, fp)
	if cf.table.SwapFirst(i, 0, fp) {
		return true
	}
	return cf.table.SwapFirst(i2, 0, fp)
}

// Clear zero-fills the table in place, reusing its storage (spec.md §5).
func (cf *CuckooFilter[T]) Clear() {
	cf.table.Reset()
}

func (cf *CuckooFilter[T]) IsEmpty() bool {
	return cf.table.Size() == 0
}

// Size returns the live entry count, saturating at math.MaxUint32.
func (cf *CuckooFilter[T]) Size() uint32 {
	s := cf.table.Size()
	if s > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(s)
}

// SizeLong returns the live entry count, saturating at math.MaxUint64 (not
// reachable in practice given MaxWords, but kept for contract parity).
func (cf *CuckooFilter[T]) SizeLong() uint64 {
	return cf.table.Size()
}

func (cf *CuckooFilter[T]) Capacity() uint64 {
	return cf.capacity
}

// Checksum returns the running sum of all non-empty fingerprint values
// currently stored (spec.md §3.1 "checksum"), exposed for inspection and
// serial-form round-trip assertions.
func (cf *CuckooFilter[T]) Checksum() uint64 {
	return cf.table.Checksum()
}

func (cf *CuckooFilter[T]) FPP() float64 {
	return cf.fpp
}

// CurrentFPP computes the observed false-positive rate from the current
// load, per spec.md §6.1's formula:
//
//	1 - ((2^f - 2)/(2^f - 1))^(2*E*load), load = size/(B*E)
func (cf *CuckooFilter[T]) CurrentFPP() float64 {
	total := float64(cf.dims.Buckets) * float64(cf.dims.EntriesPerBucket)
	if total == 0 {
		return 0
	}
	load := float64(cf.table.Size()) / total
	twoF := math.Pow(2, float64(cf.dims.BitsPerEntry))
	base := (twoF - 2) / (twoF - 1)
	return 1 - math.Pow(base, 2*float64(cf.dims.EntriesPerBucket)*load)
}

// Dimensions exposes the chosen (B, E, f) triple, primarily for the codec.
func (cf *CuckooFilter[T]) Dimensions() Dimensions {
	return cf.dims
}

// Copy returns an independent filter sharing no mutable state.
func (cf *CuckooFilter[T]) Copy() Filter[T] {
	return &CuckooFilter[T]{
		table:           cf.table.Clone(),
		dims:            cf.dims,
		capacity:        cf.capacity,
		fpp:             cf.fpp,
		strategyOrdinal: cf.strategyOrdinal,
		hasher:          cf.hasher,
		serializer:      cf.serializer,
		rng:             rand.New(rand.NewSource(1)),
	}
}

// IsCompatible reports whether peer shares this filter's (B, E, f),
// indexing strategy, and element-serializer identity (spec.md §4.3
// "compatible", invariant for multiset operations).
func (cf *CuckooFilter[T]) IsCompatible(peer Filter[T]) bool {
	other, ok := peer.(*CuckooFilter[T])
	if !ok {
		return false
	}
	return cf.dims == other.dims &&
		cf.strategyOrdinal == other.strategyOrdinal &&
		cf.serializer.Ordinal() == other.serializer.Ordinal()
}
