package filter

import (
	"bytes"
	"testing"

	fhash "github.com/ielm/cuckoofilter/pkg/hash"
)

// TestMarshalUnmarshalRoundTrip is P6 / scenario 5: serialize then
// deserialize a populated filter and check the bit-packed contents and
// observable behavior are preserved exactly.
func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	cf := newTestCuckoo(t, 2000, 0.01)
	members := make([][]byte, 0, 100)
	for i := 0; i < 100; i++ {
		e := []byte{byte(i), byte(i >> 8), byte(i >> 16), byte(i >> 24)}
		ok, err := cf.Add(e)
		if err != nil {
			t.Fatalf("Add(%d): unexpected error: %v", i, err)
		}
		if ok {
			members = append(members, e)
		}
	}

	data, err := cf.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: unexpected error: %v", err)
	}

	restored, err := DeserializeCuckoo[[]byte](data, ByteSliceSerializer{}, fhash.NewMurmur3Hasher(fhash.DefaultMurmur3Seed))
	if err != nil {
		t.Fatalf("DeserializeCuckoo: unexpected error: %v", err)
	}

	if restored.Dimensions() != cf.Dimensions() {
		t.Fatalf("dimensions mismatch after round trip: got %+v want %+v", restored.Dimensions(), cf.Dimensions())
	}
	if restored.SizeLong() != cf.SizeLong() {
		t.Fatalf("size mismatch after round trip: got %d want %d", restored.SizeLong(), cf.SizeLong())
	}
	if !bytes.Equal(wordsAsBytes(restored.table.Words()), wordsAsBytes(cf.table.Words())) {
		t.Fatalf("table words not bit-exact after round trip")
	}

	for _, e := range members {
		found, err := restored.Contains(e)
		if err != nil || !found {
			t.Fatalf("restored filter lost a member: %v (found=%v err=%v)", e, found, err)
		}
	}

	data2, err := restored.MarshalBinary()
	if err != nil {
		t.Fatalf("re-MarshalBinary: unexpected error: %v", err)
	}
	if !bytes.Equal(data, data2) {
		t.Fatalf("re-serialization is not byte-identical")
	}
}

func TestUnmarshalRejectsTruncatedHeader(t *testing.T) {
	cf := &CuckooFilter[[]byte]{}
	err := cf.UnmarshalBinary(make([]byte, headerLen-1))
	if err == nil {
		t.Fatalf("expected error for truncated header")
	}
}

func TestUnmarshalRejectsTruncatedBody(t *testing.T) {
	cf := newTestCuckoo(t, 1000, 0.02)
	cf.Add([]byte("a"))
	data, err := cf.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: unexpected error: %v", err)
	}

	truncated := data[:len(data)-4]
	dst := &CuckooFilter[[]byte]{}
	if err := dst.UnmarshalBinary(truncated); err == nil {
		t.Fatalf("expected error for truncated word data")
	}
}

func TestUnmarshalRejectsCorruptedDimensions(t *testing.T) {
	cf := newTestCuckoo(t, 1000, 0.02)
	cf.Add([]byte("a"))
	data, err := cf.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: unexpected error: %v", err)
	}

	// Corrupt numBuckets to odd, a value the format explicitly forbids.
	corrupted := append([]byte(nil), data...)
	// numBuckets occupies bytes [33:41) of the header (big-endian, so its
	// least-significant byte is the last one, at offset 40).
	corrupted[40] ^= 0x01

	dst := &CuckooFilter[[]byte]{}
	if err := dst.UnmarshalBinary(corrupted); err == nil {
		t.Fatalf("expected error for odd numBuckets")
	}
}

func TestUnmarshalRejectsChecksumMismatch(t *testing.T) {
	cf := newTestCuckoo(t, 1000, 0.02)
	cf.Add([]byte("a"))
	cf.Add([]byte("b"))
	data, err := cf.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: unexpected error: %v", err)
	}

	corrupted := append([]byte(nil), data...)
	// Flip a bit deep in the word data without touching the stored
	// checksum field, so the cross-check against the reconstructed table
	// must fail.
	corrupted[len(corrupted)-1] ^= 0xFF

	dst := &CuckooFilter[[]byte]{}
	if err := dst.UnmarshalBinary(corrupted); err == nil {
		t.Fatalf("expected checksum mismatch error")
	}
}
