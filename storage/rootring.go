package storage

import (
	"fmt"

	"github.com/shielded-rollup/settlement/field"
)

// RootRingCapacity is the fixed size of the recent-root ring, per spec §3
// ("Root ring R: fixed-capacity circular buffer of 64 F-elements").
const RootRingCapacity = 64

// ringState is the single CBOR-encoded artifact backing the whole ring;
// at 64 * 32 bytes it is cheap enough to round-trip as one record rather
// than 64 independently-keyed ones.
type ringState struct {
	Roots [][]byte // little-endian Bytes32 of each filled slot, oldest-first within the filled window
	Count int      // number of slots filled so far, saturating at RootRingCapacity
}

// loadRing reads the ring, returning an empty one if it has never been
// written (the case for a freshly-initialized settlement).
func (s *Storage) loadRing() (ringState, error) {
	var rs ringState
	if err := s.getArtifact(rootRingPrefix, ringMetaKey, &rs); err != nil {
		if err == ErrNotFound {
			return ringState{}, nil
		}
		return ringState{}, fmt.Errorf("storage: load root ring: %w", err)
	}
	return rs, nil
}

// PushRoot appends root to the ring, evicting the oldest entry once the
// ring is full, per spec §3 ("Elements never leave the ring except by
// eviction after 64 further advances").
func (s *Storage) PushRoot(root field.Element) error {
	rs, err := s.loadRing()
	if err != nil {
		return err
	}
	b := root.Bytes32()
	rs.Roots = append(rs.Roots, b[:])
	if len(rs.Roots) > RootRingCapacity {
		rs.Roots = rs.Roots[len(rs.Roots)-RootRingCapacity:]
	}
	rs.Count++
	if rs.Count > RootRingCapacity {
		rs.Count = RootRingCapacity
	}
	return s.setArtifact(rootRingPrefix, ringMetaKey, rs)
}

// RecentRoots returns every root currently held in the ring, oldest-first.
func (s *Storage) RecentRoots() ([]field.Element, error) {
	rs, err := s.loadRing()
	if err != nil {
		return nil, err
	}
	out := make([]field.Element, 0, len(rs.Roots))
	for _, b := range rs.Roots {
		var arr [32]byte
		copy(arr[:], b)
		e, err := field.FromBytes32(arr)
		if err != nil {
			return nil, fmt.Errorf("storage: corrupt root ring entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// CurrentRoot returns R[head-1], the most recently pushed root, and false
// if the ring is empty (no root has ever been pushed).
func (s *Storage) CurrentRoot() (field.Element, bool, error) {
	roots, err := s.RecentRoots()
	if err != nil {
		return field.Element{}, false, err
	}
	if len(roots) == 0 {
		return field.Element{}, false, nil
	}
	return roots[len(roots)-1], true, nil
}

// ContainsRoot reports whether root appears anywhere in the ring, per
// spec §4.3(d)'s recent-root check.
func (s *Storage) ContainsRoot(root field.Element) (bool, error) {
	roots, err := s.RecentRoots()
	if err != nil {
		return false, err
	}
	for _, r := range roots {
		if r.Equal(root) {
			return true, nil
		}
	}
	return false, nil
}
