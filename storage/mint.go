package storage

import (
	"fmt"
	"math/big"

	"github.com/shielded-rollup/settlement/field"
)

// mintRecord is the CBOR envelope for one pending mint ledger entry.
type mintRecord struct {
	Amount []byte // big.Int bytes, big-endian
}

// SetPendingMint records commitment -> amount in the pending mint ledger,
// per spec §3 ("Pending mint ledger M: mapping C -> positive amount").
// Callers (settlement.Mint) are responsible for rejecting a re-mint of an
// already-pending commitment before calling this.
func (s *Storage) SetPendingMint(commitment field.Element, amount *big.Int) error {
	key := commitment.Bytes32()
	return s.setArtifact(mintPrefix, key[:], mintRecord{Amount: amount.Bytes()})
}

// GetPendingMint returns the pending amount for commitment and whether it
// is present. Amount 0 is never stored; absence and "not found" coincide,
// per spec §3's "amount 0 is reserved to mean absent".
func (s *Storage) GetPendingMint(commitment field.Element) (*big.Int, bool, error) {
	key := commitment.Bytes32()
	var rec mintRecord
	if err := s.getArtifact(mintPrefix, key[:], &rec); err != nil {
		if err == ErrNotFound {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage: get pending mint: %w", err)
	}
	return new(big.Int).SetBytes(rec.Amount), true, nil
}

// DeletePendingMint drains commitment from the ledger once a block has
// consumed it. Deleting an absent key is not an error.
func (s *Storage) DeletePendingMint(commitment field.Element) error {
	key := commitment.Bytes32()
	return s.deleteArtifact(mintPrefix, key[:])
}
