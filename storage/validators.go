package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ValidatorSnapshot is one entry of the validator-set registry V, per spec
// §3 ("ordered sequence of snapshots Vi = (set, validFrom) with strictly
// increasing validFrom").
type ValidatorSnapshot struct {
	Set       []common.Address
	ValidFrom uint64
}

// ValidatorSnapshots returns the full registry, oldest-first. Empty until
// Initialize seeds V[0].
func (s *Storage) ValidatorSnapshots() ([]ValidatorSnapshot, error) {
	var snaps []ValidatorSnapshot
	if err := s.getArtifact(validatorPrefix, validatorSeqKey, &snaps); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: load validator snapshots: %w", err)
	}
	return snaps, nil
}

// AppendValidatorSnapshot persists a new snapshot. Callers (settlement's
// Initialize and SetValidators) are responsible for enforcing the
// strictly-increasing validFrom invariant before calling this.
func (s *Storage) AppendValidatorSnapshot(snap ValidatorSnapshot) error {
	snaps, err := s.ValidatorSnapshots()
	if err != nil {
		return err
	}
	snaps = append(snaps, snap)
	return s.setArtifact(validatorPrefix, validatorSeqKey, snaps)
}
