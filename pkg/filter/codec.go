package filter

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"

	"github.com/ielm/cuckoofilter/internal/bitpack"

	ferrors "github.com/ielm/cuckoofilter/errors"
	fhash "github.com/ielm/cuckoofilter/pkg/hash"
)

// headerLen is the fixed-width prefix of the serial form, before the raw
// table words (spec.md §6.3):
// strategyOrdinal(1) + capacity(8) + fpp(8) + size(8) + checksum(8) +
// numBuckets(8) + entriesPerBucket(4) + bitsPerEntry(4) + dataLen(4).
const headerLen = 1 + 8 + 8 + 8 + 8 + 8 + 4 + 4 + 4

// MarshalBinary encodes the filter in the big-endian serial form of
// spec.md §6.3.
func (cf *CuckooFilter[T]) MarshalBinary() ([]byte, error) {
	words := cf.table.Words()
	buf := make([]byte, headerLen+len(words)*8)

	off := 0
	buf[off] = byte(cf.strategyOrdinal)
	off++
	binary.BigEndian.PutUint64(buf[off:], cf.capacity)
	off += 8
	binary.BigEndian.PutUint64(buf[off:], math.Float64bits(cf.fpp))
	off += 8
	binary.BigEndian.PutUint64(buf[off:], cf.table.Size())
	off += 8
	binary.BigEndian.PutUint64(buf[off:], cf.table.Checksum())
	off += 8
	binary.BigEndian.PutUint64(buf[off:], cf.dims.Buckets)
	off += 8
	binary.BigEndian.PutUint32(buf[off:], uint32(cf.dims.EntriesPerBucket))
	off += 4
	binary.BigEndian.PutUint32(buf[off:], uint32(cf.dims.BitsPerEntry))
	off += 4
	binary.BigEndian.PutUint32(buf[off:], uint32(len(words)))
	off += 4
	for _, w := range words {
		binary.BigEndian.PutUint64(buf[off:], w)
		off += 8
	}
	return buf, nil
}

// UnmarshalBinary decodes data into the receiver, replacing its table and
// dimensioning but keeping its existing hasher/serializer. It rejects any
// field out of range or a truncated stream, wrapping the underlying cause
// (spec.md §6.3, §7).
func (cf *CuckooFilter[T]) UnmarshalBinary(data []byte) error {
	if len(data) < headerLen {
		return ferrors.Wrap(ferrors.Deserialization, "truncated header", io.ErrUnexpectedEOF)
	}

	off := 0
	strategyOrdinal := int8(data[off])
	off++
	capacity := binary.BigEndian.Uint64(data[off:])
	off += 8
	fpp := math.Float64frombits(binary.BigEndian.Uint64(data[off:]))
	off += 8
	size := binary.BigEndian.Uint64(data[off:])
	off += 8
	checksum := binary.BigEndian.Uint64(data[off:])
	off += 8
	numBuckets := binary.BigEndian.Uint64(data[off:])
	off += 8
	entriesPerBucket := binary.BigEndian.Uint32(data[off:])
	off += 4
	bitsPerEntry := binary.BigEndian.Uint32(data[off:])
	off += 4
	dataLen := binary.BigEndian.Uint32(data[off:])
	off += 4

	if entriesPerBucket == 0 || entriesPerBucket > 255 || bitsPerEntry == 0 || bitsPerEntry > 64 {
		return ferrors.New(ferrors.Deserialization, "entriesPerBucket/bitsPerEntry out of range")
	}
	if numBuckets == 0 || numBuckets%2 != 0 {
		return ferrors.New(ferrors.Deserialization, "numBuckets must be a positive even integer")
	}
	if fpp <= 0 || fpp >= 1 {
		return ferrors.New(ferrors.Deserialization, "fpp out of range")
	}
	if capacity == 0 {
		return ferrors.New(ferrors.Deserialization, "capacity must be positive")
	}
	if strategyOrdinal != StrategyParitySign {
		return ferrors.New(ferrors.Deserialization, "unknown indexing strategy ordinal")
	}

	expectedWords := bitpack.RequiredWords(numBuckets, uint8(entriesPerBucket), uint8(bitsPerEntry))
	if uint64(dataLen) != expectedWords {
		return ferrors.New(ferrors.Deserialization, "dataLen does not match dimensions")
	}
	if len(data[off:]) < int(dataLen)*8 {
		return ferrors.Wrap(ferrors.Deserialization, "truncated word data", io.ErrUnexpectedEOF)
	}

	words := make([]uint64, dataLen)
	for i := range words {
		words[i] = binary.BigEndian.Uint64(data[off:])
		off += 8
	}

	table := bitpack.FromWords(words, numBuckets, uint8(entriesPerBucket), uint8(bitsPerEntry))
	if table.Size() != size || table.Checksum() != checksum {
		return ferrors.New(ferrors.Deserialization, "size/checksum mismatch against stored table contents")
	}

	cf.strategyOrdinal = strategyOrdinal
	cf.capacity = capacity
	cf.fpp = fpp
	cf.dims = Dimensions{
		Buckets:          numBuckets,
		EntriesPerBucket: uint8(entriesPerBucket),
		BitsPerEntry:     uint8(bitsPerEntry),
	}
	cf.table = table
	if cf.rng == nil {
		cf.rng = rand.New(rand.NewSource(1))
	}
	return nil
}

// DeserializeCuckoo decodes a serialized cuckoo filter, binding it to
// serializer and hasher (which are not themselves part of the wire form —
// only the strategy ordinal is, per spec.md §6.3 — so callers must supply
// a serializer/hasher matching what produced the bytes).
func DeserializeCuckoo[T any](data []byte, serializer Serializer[T], hasher fhash.Hasher) (*CuckooFilter[T], error) {
	if serializer == nil {
		return nil, nullArgument("serializer")
	}
	if hasher == nil {
		return nil, nullArgument("hasher")
	}
	cf := &CuckooFilter[T]{serializer: serializer, hasher: hasher}
	if err := cf.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return cf, nil
}
