package storage

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shielded-rollup/settlement/field"
)

// burnRecord is the CBOR envelope for one pending burn ledger entry.
type burnRecord struct {
	To     common.Address
	Amount []byte // big.Int bytes, big-endian
}

// SetPendingBurn records nullifier -> (to, amount) in the pending burn
// ledger, per spec §3 ("Pending burn ledger B"). Per spec §4.3(4) and
// DESIGN_NOTES §9, this overwrites any existing entry for the same
// nullifier; that latitude (re-targeting vs. latent defect) is preserved
// deliberately rather than guarded against.
func (s *Storage) SetPendingBurn(nullifier field.Element, to common.Address, amount *big.Int) error {
	key := nullifier.Bytes32()
	return s.setArtifact(burnPrefix, key[:], burnRecord{To: to, Amount: amount.Bytes()})
}

// GetPendingBurn returns the pending (recipient, amount) for nullifier and
// whether it is present.
func (s *Storage) GetPendingBurn(nullifier field.Element) (common.Address, *big.Int, bool, error) {
	key := nullifier.Bytes32()
	var rec burnRecord
	if err := s.getArtifact(burnPrefix, key[:], &rec); err != nil {
		if err == ErrNotFound {
			return common.Address{}, nil, false, nil
		}
		return common.Address{}, nil, false, fmt.Errorf("storage: get pending burn: %w", err)
	}
	return rec.To, new(big.Int).SetBytes(rec.Amount), true, nil
}

// DeletePendingBurn drains nullifier from the ledger once a block has
// consumed it.
func (s *Storage) DeletePendingBurn(nullifier field.Element) error {
	key := nullifier.Bytes32()
	return s.deleteArtifact(burnPrefix, key[:])
}
