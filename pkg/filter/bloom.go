package filter

import (
	"encoding/binary"
	"math"

	"github.com/bits-and-blooms/bloom/v3"

	ferrors "github.com/ielm/cuckoofilter/errors"
)

// BloomFilter is a thin adapter over an existing bit-array Bloom primitive
// (github.com/bits-and-blooms/bloom/v3, the "external collaborator" of
// spec.md §1) realizing the Filter[T] contract for API parity with
// CuckooFilter. Remove and its collection/peer variants are unsupported
// (spec.md §6.1, §9 "Polymorphism").
//
// Grounded on the teacher's bloom.go method surface (ielm-neostd
// pkg/collections/filter/bloom.go: Add/Contains/Clear/Size/
// FalsePositiveRate/Copy/Merge), with the body replaced to delegate to the
// real primitive instead of a hand-rolled bitset.
type BloomFilter[T any] struct {
	inner      *bloom.BloomFilter
	capacity   uint64
	fpp        float64
	serializer Serializer[T]
}

// NewBloom creates a Bloom filter dimensioned for capacity n at target
// false-positive rate eps.
func NewBloom[T any](n uint64, eps float64, serializer Serializer[T]) (*BloomFilter[T], error) {
	if serializer == nil {
		return nil, nullArgument("serializer")
	}
	if n == 0 {
		return nil, ferrors.New(ferrors.InvalidArgument, "capacity must be positive")
	}
	if eps <= 0 || eps >= 1 {
		return nil, ferrors.New(ferrors.InvalidArgument, "fpp must be in (0,1)")
	}
	return &BloomFilter[T]{
		inner:      bloom.NewWithEstimates(uint(n), eps),
		capacity:   n,
		fpp:        eps,
		serializer: serializer,
	}, nil
}

func (bf *BloomFilter[T]) marshal(e T) ([]byte, error) {
	data, err := bf.serializer.Marshal(e)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.InvalidArgument, "failed to serialize element", err)
	}
	return data, nil
}

// Add inserts e, returning true if it was not already (probably) present.
func (bf *BloomFilter[T]) Add(e T) (bool, error) {
	if isNilArg(e) {
		return false, nullArgument("element")
	}
	data, err := bf.marshal(e)
	if err != nil {
		return false, err
	}
	wasNew := !bf.inner.Test(data)
	bf.inner.Add(data)
	return wasNew, nil
}

func (bf *BloomFilter[T]) Contains(e T) (bool, error) {
	if isNilArg(e) {
		return false, nullArgument("element")
	}
	data, err := bf.marshal(e)
	if err != nil {
		return false, err
	}
	return bf.inner.Test(data), nil
}

// Remove is unsupported: Bloom filters cannot remove an element without
// risking false negatives for other members (spec.md §1, §9).
func (bf *BloomFilter[T]) Remove(T) (bool, error) {
	return false, ferrors.New(ferrors.Unsupported, "bloom filter does not support Remove")
}

func (bf *BloomFilter[T]) Clear() {
	bf.inner.ClearAll()
}

func (bf *BloomFilter[T]) AddAllElements(es []T) (bool, error) {
	for _, e := range es {
		if _, err := bf.Add(e); err != nil {
			return false, err
		}
	}
	return true, nil
}

// AddAllPeer unions peer's bits into the receiver's via the underlying
// primitive's Merge.
func (bf *BloomFilter[T]) AddAllPeer(peer Filter[T]) (bool, error) {
	other, ok := peer.(*BloomFilter[T])
	if !ok {
		return false, incompatiblePeer()
	}
	if other == bf {
		return false, selfPeer()
	}
	if !bf.IsCompatible(peer) {
		return false, incompatiblePeer()
	}
	if err := bf.inner.Merge(other.inner); err != nil {
		return false, ferrors.Wrap(ferrors.InvalidArgument, "merge failed", err)
	}
	return true, nil
}

func (bf *BloomFilter[T]) RemoveAllElements([]T) (bool, error) {
	return false, ferrors.New(ferrors.Unsupported, "bloom filter does not support RemoveAll")
}

func (bf *BloomFilter[T]) RemoveAllPeer(Filter[T]) (bool, error) {
	return false, ferrors.New(ferrors.Unsupported, "bloom filter does not support RemoveAll")
}

func (bf *BloomFilter[T]) ContainsAllElements(es []T) (bool, error) {
	for _, e := range es {
		ok, err := bf.Contains(e)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ContainsAllPeer reports whether the receiver's bit array is a superset of
// peer's, via the underlying bitset's IsSuperSet.
func (bf *BloomFilter[T]) ContainsAllPeer(peer Filter[T]) (bool, error) {
	other, ok := peer.(*BloomFilter[T])
	if !ok {
		return false, incompatiblePeer()
	}
	if other == bf {
		return false, selfPeer()
	}
	if !bf.IsCompatible(peer) {
		return false, incompatiblePeer()
	}
	return bf.inner.BitSet().IsSuperSet(other.inner.BitSet()), nil
}

func (bf *BloomFilter[T]) IsEmpty() bool {
	return bf.inner.ApproximatedSize() == 0
}

func (bf *BloomFilter[T]) Size() uint32 {
	return bf.inner.ApproximatedSize()
}

func (bf *BloomFilter[T]) SizeLong() uint64 {
	return uint64(bf.inner.ApproximatedSize())
}

func (bf *BloomFilter[T]) Capacity() uint64 {
	return bf.capacity
}

func (bf *BloomFilter[T]) FPP() float64 {
	return bf.fpp
}

func (bf *BloomFilter[T]) CurrentFPP() float64 {
	return bf.inner.EstimateFalsePositiveRate(uint(bf.inner.ApproximatedSize()))
}

// IsCompatible reports whether peer is a BloomFilter[T] with the same bit
// count and hash-function count.
func (bf *BloomFilter[T]) IsCompatible(peer Filter[T]) bool {
	other, ok := peer.(*BloomFilter[T])
	if !ok {
		return false
	}
	return bf.inner.Cap() == other.inner.Cap() && bf.inner.K() == other.inner.K()
}

// Copy returns an independent Bloom filter sharing no mutable state.
func (bf *BloomFilter[T]) Copy() Filter[T] {
	return &BloomFilter[T]{
		inner:      bf.inner.Copy(),
		capacity:   bf.capacity,
		fpp:        bf.fpp,
		serializer: bf.serializer,
	}
}

// MarshalBinary delegates to the underlying primitive's own binary form,
// prefixed with the requested capacity and fpp so a round trip preserves
// the full Filter[T] contract, not just the bit array.
func (bf *BloomFilter[T]) MarshalBinary() ([]byte, error) {
	inner, err := bf.inner.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 16+len(inner))
	binary.BigEndian.PutUint64(buf[0:8], bf.capacity)
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(bf.fpp))
	copy(buf[16:], inner)
	return buf, nil
}

// UnmarshalBinary decodes data into the receiver, keeping its serializer.
func (bf *BloomFilter[T]) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return ferrors.New(ferrors.Deserialization, "truncated bloom filter header")
	}
	bf.capacity = binary.BigEndian.Uint64(data[0:8])
	bf.fpp = math.Float64frombits(binary.BigEndian.Uint64(data[8:16]))
	inner := &bloom.BloomFilter{}
	if err := inner.UnmarshalBinary(data[16:]); err != nil {
		return ferrors.Wrap(ferrors.Deserialization, "malformed bloom filter body", err)
	}
	bf.inner = inner
	return nil
}
