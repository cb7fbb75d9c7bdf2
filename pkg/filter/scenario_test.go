package filter

import (
	"fmt"
	"testing"
)

// TestFalsePositiveProfileShape exercises scenario 1: insert every even
// integer as a decimal string, confirm none are ever missed (P1/P5), and
// confirm the false-positive rate among never-inserted odd integers stays
// within a small multiple of the requested epsilon. The exact set of
// colliding odd integers is a function of the hash implementation, so
// (unlike the source scenario) this asserts the statistical shape of the
// property rather than a hard-coded index list.
func TestFalsePositiveProfileShape(t *testing.T) {
	const n = 100000
	const eps = 0.03
	cf := newTestCuckoo(t, n, eps)

	for i := 0; i < 2*n; i += 2 {
		s := []byte(fmt.Sprintf("%d", i))
		ok, err := cf.Add(s)
		if err != nil {
			t.Fatalf("Add(%d): unexpected error: %v", i, err)
		}
		if !ok {
			t.Fatalf("Add(%d): failed before reaching dimensioned capacity", i)
		}
	}

	for i := 0; i < 2*n; i += 2 {
		s := []byte(fmt.Sprintf("%d", i))
		found, err := cf.Contains(s)
		if err != nil || !found {
			t.Fatalf("Contains(%d): inserted element reported absent (found=%v err=%v)", i, found, err)
		}
	}

	falsePositives := 0
	const oddSampleSize = 20000
	for i := 1; i < 2*oddSampleSize; i += 2 {
		s := []byte(fmt.Sprintf("%d", i))
		found, err := cf.Contains(s)
		if err != nil {
			t.Fatalf("Contains(%d): unexpected error: %v", i, err)
		}
		if found {
			falsePositives++
		}
	}

	observedRate := float64(falsePositives) / float64(oddSampleSize)
	// Allow a generous multiple of the requested epsilon: this is a shape
	// check against gross regressions, not a statistical certification.
	if observedRate > eps*5 {
		t.Fatalf("observed false-positive rate %v far exceeds requested epsilon %v", observedRate, eps)
	}

	currentFpp := cf.CurrentFPP()
	if currentFpp <= 0 || currentFpp >= 1 {
		t.Fatalf("currentFpp out of range: %v", currentFpp)
	}
}

// TestIncompatibilityRejectionBeforeMutation is scenario 6: filters
// dimensioned differently must fail IsCompatible, and every multiset peer
// operation between them must fail without mutating the receiver.
func TestIncompatibilityRejectionBeforeMutation(t *testing.T) {
	a := newTestCuckoo(t, 1000, 0.01)
	b := newTestCuckoo(t, 50000, 0.01)

	if a.IsCompatible(b) {
		t.Fatalf("expected differently-dimensioned filters to be incompatible")
	}

	a.Add([]byte("seed"))
	sizeBefore := a.SizeLong()

	if ok, err := a.AddAllPeer(b); err == nil || ok {
		t.Fatalf("AddAllPeer: expected incompatible-peer error, got ok=%v err=%v", ok, err)
	}
	if ok, err := a.ContainsAllPeer(b); err == nil || ok {
		t.Fatalf("ContainsAllPeer: expected incompatible-peer error, got ok=%v err=%v", ok, err)
	}
	if ok, err := a.RemoveAllPeer(b); err == nil || ok {
		t.Fatalf("RemoveAllPeer: expected incompatible-peer error, got ok=%v err=%v", ok, err)
	}

	if a.SizeLong() != sizeBefore {
		t.Fatalf("receiver mutated despite incompatible peer: size %d -> %d", sizeBefore, a.SizeLong())
	}
}

// TestMultisetPeerOperations exercises AddAllPeer/ContainsAllPeer/
// RemoveAllPeer/Equivalent between two compatibly-dimensioned filters.
func TestMultisetPeerOperations(t *testing.T) {
	a := newTestCuckoo(t, 1000, 0.02)
	b := newTestCuckoo(t, 1000, 0.02)

	for _, s := range []string{"alpha", "beta", "gamma"} {
		if ok, err := b.Add([]byte(s)); err != nil || !ok {
			t.Fatalf("seeding b with %q: ok=%v err=%v", s, ok, err)
		}
	}

	ok, err := a.AddAllPeer(b)
	if err != nil || !ok {
		t.Fatalf("AddAllPeer: ok=%v err=%v", ok, err)
	}

	for _, s := range []string{"alpha", "beta", "gamma"} {
		found, err := a.Contains([]byte(s))
		if err != nil || !found {
			t.Fatalf("Contains(%q) after AddAllPeer: found=%v err=%v", s, found, err)
		}
	}

	contains, err := a.ContainsAllPeer(b)
	if err != nil || !contains {
		t.Fatalf("ContainsAllPeer: contains=%v err=%v", contains, err)
	}

	equivalent, err := a.Equivalent(b)
	if err != nil || !equivalent {
		t.Fatalf("Equivalent: expected true right after union, equivalent=%v err=%v", equivalent, err)
	}

	if ok, err := a.Add([]byte("delta")); err != nil || !ok {
		t.Fatalf("Add(delta): ok=%v err=%v", ok, err)
	}
	equivalent, err = a.Equivalent(b)
	if err != nil {
		t.Fatalf("Equivalent: unexpected error: %v", err)
	}
	if equivalent {
		t.Fatalf("expected Equivalent to be false once a diverges from b")
	}

	ok, err = a.RemoveAllPeer(b)
	if err != nil || !ok {
		t.Fatalf("RemoveAllPeer: ok=%v err=%v", ok, err)
	}
	for _, s := range []string{"alpha", "beta", "gamma"} {
		found, err := a.Contains([]byte(s))
		if err != nil {
			t.Fatalf("Contains(%q) after RemoveAllPeer: unexpected error: %v", s, err)
		}
		if found {
			t.Fatalf("Contains(%q) after RemoveAllPeer: still present", s)
		}
	}
	found, err := a.Contains([]byte("delta"))
	if err != nil || !found {
		t.Fatalf("delta should survive RemoveAllPeer(b), which only removed b's members: found=%v err=%v", found, err)
	}
}

// TestRemoveAllPeerSelfClears exercises the documented reading that
// removeAll(self) behaves as Clear.
func TestRemoveAllPeerSelfClears(t *testing.T) {
	a := newTestCuckoo(t, 1000, 0.02)
	a.Add([]byte("a"))
	a.Add([]byte("b"))

	ok, err := a.RemoveAllPeer(a)
	if err != nil || !ok {
		t.Fatalf("RemoveAllPeer(self): ok=%v err=%v", ok, err)
	}
	if !a.IsEmpty() {
		t.Fatalf("expected filter to be empty after RemoveAllPeer(self)")
	}
}
