// Package filter implements the public filter contract (spec.md §6,
// component C5), the cuckoo filter (components C3, C4, C6), and a bloom
// filter peer implementation, generalizing the teacher's
// (ielm-neostd/pkg/collections/filter) fixed-shape implementations to the
// spec's parameterized dimensioning and bit-exact wire format.
package filter

import (
	"encoding/binary"

	ferrors "github.com/ielm/cuckoofilter/errors"
)

// Filter is the capability set shared by the cuckoo and bloom variants
// (spec.md §6.1). Optional operations (Remove*, unsupported by bloom)
// return an *errors.Error tagged errors.Unsupported rather than panicking.
type Filter[T any] interface {
	Add(e T) (bool, error)
	Contains(e T) (bool, error)
	Remove(e T) (bool, error)

	Clear()

	AddAllElements(es []T) (bool, error)
	AddAllPeer(peer Filter[T]) (bool, error)
	RemoveAllElements(es []T) (bool, error)
	RemoveAllPeer(peer Filter[T]) (bool, error)
	ContainsAllElements(es []T) (bool, error)
	ContainsAllPeer(peer Filter[T]) (bool, error)

	IsEmpty() bool
	Size() uint32
	SizeLong() uint64
	Capacity() uint64
	FPP() float64
	CurrentFPP() float64

	IsCompatible(peer Filter[T]) bool
	Copy() Filter[T]
}

// Serializer is the element-serializer contract (spec.md §6.2): an opaque
// writer of an element's bytes, identified for compatibility purposes by
// Ordinal rather than by structural equality.
type Serializer[T any] interface {
	Ordinal() int8
	Marshal(e T) ([]byte, error)
}

// ByteSliceSerializer serializes []byte elements verbatim. Ordinal 0.
type ByteSliceSerializer struct{}

func (ByteSliceSerializer) Ordinal() int8 { return 0 }
func (ByteSliceSerializer) Marshal(e []byte) ([]byte, error) {
	return e, nil
}

// StringSerializer serializes string elements via their UTF-8 bytes. Ordinal 1.
type StringSerializer struct{}

func (StringSerializer) Ordinal() int8 { return 1 }
func (StringSerializer) Marshal(e string) ([]byte, error) {
	return []byte(e), nil
}

// Uint64Serializer serializes uint64 elements as 8 big-endian bytes. Ordinal 2.
type Uint64Serializer struct{}

func (Uint64Serializer) Ordinal() int8 { return 2 }
func (Uint64Serializer) Marshal(e uint64) ([]byte, error) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], e)
	return b[:], nil
}

// BinaryMarshaler matches encoding.BinaryMarshaler, restated locally so
// BinarySerializer's generic constraint doesn't force importing encoding
// into every caller.
type BinaryMarshaler interface {
	MarshalBinary() ([]byte, error)
}

// BinarySerializer adapts any encoding.BinaryMarshaler element. Ordinal 3.
type BinarySerializer[T BinaryMarshaler] struct{}

func (BinarySerializer[T]) Ordinal() int8 { return 3 }
func (BinarySerializer[T]) Marshal(e T) ([]byte, error) {
	return e.MarshalBinary()
}

func nullArgument(what string) error {
	return ferrors.New(ferrors.NullArgument, what+" must not be nil/absent")
}

func incompatiblePeer() error {
	return ferrors.New(ferrors.InvalidArgument, "peer is not compatible with this filter")
}

func selfPeer() error {
	return ferrors.New(ferrors.InvalidArgument, "peer must not be the receiver itself")
}
