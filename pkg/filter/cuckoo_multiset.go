package filter

// addAtBucket attempts to place fp starting at a single candidate bucket:
// an empty slot in i, else bounded eviction starting from i. Used by the
// peer multiset operations, which specify trying one candidate bucket at a
// time rather than Add's "check both buckets for space before evicting"
// order (spec.md §4.3 "addAll(other)").
func (cf *CuckooFilter[T]) addAtBucket(i uint64, fp uint32) bool {
	if s := cf.table.FirstEmpty(i); s >= 0 {
		cf.table.WriteEntry(i, uint8(s), fp)
		return true
	}
	return cf.evict(i, fp)
}

// AddAllElements inserts es in order, stopping at the first saturation
// failure. Already-inserted elements are not rolled back (no global
// transaction), matching Add's own per-call rollback guarantee but not
// extending it across the whole collection.
func (cf *CuckooFilter[T]) AddAllElements(es []T) (bool, error) {
	for _, e := range es {
		ok, err := cf.Add(e)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// AddAllPeer unions every entry of peer into the receiver (spec.md §4.3
// "addAll(other)"). For each non-empty slot (j, fp) of peer, it attempts
// addAtBucket(j, fp) then addAtBucket(altIndex(j, fp), fp); if both fail it
// stops and returns false. The receiver is not rolled back: entries
// already unioned in remain (explicit Open Question resolution, spec.md §9).
func (cf *CuckooFilter[T]) AddAllPeer(peer Filter[T]) (bool, error) {
	other, ok := peer.(*CuckooFilter[T])
	if !ok {
		return false, incompatiblePeer()
	}
	if other == cf {
		return false, selfPeer()
	}
	if !cf.IsCompatible(peer) {
		return false, incompatiblePeer()
	}

	for j := uint64(0); j < other.dims.Buckets; j++ {
		for s := uint8(0); s < other.dims.EntriesPerBucket; s++ {
			fp := other.table.ReadEntry(j, s)
			if fp == 0 {
				continue
			}
			if cf.addAtBucket(j, fp) {
				continue
			}
			j2 := cf.altIndexOf(j, fp)
			if cf.addAtBucket(j2, fp) {
				continue
			}
			return false, nil
		}
	}
	return true, nil
}

// RemoveAllElements removes es in order, stopping at the first element not
// found in either candidate bucket.
func (cf *CuckooFilter[T]) RemoveAllElements(es []T) (bool, error) {
	for _, e := range es {
		ok, err := cf.Remove(e)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// RemoveAllPeer removes one matching occurrence for every entry of peer
// (spec.md §4.3 "removeAll(other)"), stopping at the first occurrence with
// no matching slot in either candidate bucket. removeAll(self) is
// interpreted as Clear, per spec.md §6.1's note that this reading is
// permitted.
func (cf *CuckooFilter[T]) RemoveAllPeer(peer Filter[T]) (bool, error) {
	other, ok := peer.(*CuckooFilter[T])
	if !ok {
		return false, incompatiblePeer()
	}
	if other == cf {
		cf.Clear()
		return true, nil
	}
	if !cf.IsCompatible(peer) {
		return false, incompatiblePeer()
	}

	for j := uint64(0); j < other.dims.Buckets; j++ {
		for s := uint8(0); s < other.dims.EntriesPerBucket; s++ {
			fp := other.table.ReadEntry(j, s)
			if fp == 0 {
				continue
			}
			if cf.removeAt(j, fp) {
				continue
			}
			return false, nil
		}
	}
	return true, nil
}

// ContainsAllElements reports whether every element of es is present.
func (cf *CuckooFilter[T]) ContainsAllElements(es []T) (bool, error) {
	for _, e := range es {
		ok, err := cf.Contains(e)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ContainsAllPeer reports whether the receiver's multiset dominates peer's:
// for every distinct fingerprint appearing in peer's bucket j, the
// receiver's count across {j, altIndex(j,fp)} must be at least peer's count
// across the same two buckets (spec.md §4.3 "containsAll(other)").
func (cf *CuckooFilter[T]) ContainsAllPeer(peer Filter[T]) (bool, error) {
	other, ok := peer.(*CuckooFilter[T])
	if !ok {
		return false, incompatiblePeer()
	}
	if other == cf {
		return false, selfPeer()
	}
	if !cf.IsCompatible(peer) {
		return false, incompatiblePeer()
	}
	return cf.dominates(other, false), nil
}

// Equivalent reports whether the receiver and peer hold the same multiset
// of fingerprints in every bucket pair (spec.md §4.3 "equivalent(other)").
func (cf *CuckooFilter[T]) Equivalent(peer Filter[T]) (bool, error) {
	other, ok := peer.(*CuckooFilter[T])
	if !ok {
		return false, incompatiblePeer()
	}
	if !cf.IsCompatible(peer) {
		return false, incompatiblePeer()
	}
	if other == cf {
		return true, nil
	}
	return cf.dominates(other, true) && other.dominates(cf, true), nil
}

// dominates implements the shared scan behind ContainsAllPeer/Equivalent:
// requireEqual=false checks count_self >= count_other (containsAll);
// requireEqual=true checks count_self == count_other (equivalent, called
// symmetrically from both sides by Equivalent).
func (cf *CuckooFilter[T]) dominates(other *CuckooFilter[T], requireEqual bool) bool {
	for j := uint64(0); j < other.dims.Buckets; j++ {
		seen := make(map[uint32]struct{}, other.dims.EntriesPerBucket)
		for s := uint8(0); s < other.dims.EntriesPerBucket; s++ {
			fp := other.table.ReadEntry(j, s)
			if fp == 0 {
				continue
			}
			if _, dup := seen[fp]; dup {
				continue
			}
			seen[fp] = struct{}{}

			j2 := cf.altIndexOf(j, fp)
			countSelf := cf.table.Count(j, fp) + cf.table.Count(j2, fp)
			countOther := other.table.Count(j, fp) + other.table.Count(j2, fp)
			if requireEqual {
				if countSelf != countOther {
					return false
				}
			} else if countSelf < countOther {
				return false
			}
		}
	}
	return true
}
