package filter

import (
	"math"

	ferrors "github.com/ielm/cuckoofilter/errors"
)

// MinFPP is the smallest false-positive rate dimensioning will accept:
// 2*8 / 2^64, per spec.md §4.4.
const MinFPP = (2.0 * 8.0) / 18446744073709551616.0 // 2^64

// Dimensions is the (B, E, f) triple chosen for a requested (capacity n,
// target fpp eps). The load factor used to derive B is not stored.
type Dimensions struct {
	Buckets          uint64
	EntriesPerBucket uint8
	BitsPerEntry     uint8
}

// Dimension chooses (B, E, f) from a requested (capacity n, target fpp eps),
// per spec.md §4.4's table of E/load by epsilon range.
func Dimension(n uint64, eps float64) (Dimensions, error) {
	if n == 0 {
		return Dimensions{}, ferrors.New(ferrors.InvalidArgument, "capacity must be positive")
	}
	if eps <= 0 || eps >= 1 {
		return Dimensions{}, ferrors.New(ferrors.InvalidArgument, "fpp must be in (0,1)")
	}
	if eps < MinFPP {
		return Dimensions{}, ferrors.New(ferrors.InvalidArgument, "fpp below MinFPP")
	}

	var e uint8
	var a float64
	switch {
	case eps <= 1e-5:
		e, a = 8, 0.98
	case eps <= 2e-3:
		e, a = 4, 0.955
	default:
		e, a = 2, 0.84
	}

	f := uint8(math.Ceil(math.Log2(2 * float64(e) / eps)))
	if f == 0 {
		f = 1
	}
	if f > 64 {
		return Dimensions{}, ferrors.New(ferrors.InvalidArgument, "required fingerprint width exceeds 64 bits")
	}

	requiredEntries := uint64(math.Ceil(float64(n) / a))
	requiredBuckets := (requiredEntries + uint64(e) - 1) / uint64(e)
	if requiredBuckets == 0 {
		requiredBuckets = 1
	}
	if requiredBuckets%2 != 0 {
		requiredBuckets++
	}

	return Dimensions{
		Buckets:          requiredBuckets,
		EntriesPerBucket: e,
		BitsPerEntry:     f,
	}, nil
}
