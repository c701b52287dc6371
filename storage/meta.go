package storage

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var metaPrefix = []byte("meta/")

var (
	settlementMetaKey = []byte("settlement")
	proverSetKey      = []byte("provers")
)

// SettlementMeta is the small set of scalar fields the settlement state
// machine needs to survive a restart: whether it has been initialized,
// the owner/token addresses fixed at that time, and the last accepted
// block's hash/height/validator-index pointer, per spec §3's state tuple.
type SettlementMeta struct {
	Initialized       bool
	Owner             common.Address
	Token             common.Address
	BlockHash         [32]byte
	BlockHeight       uint64
	ValidatorSetIndex int
}

// LoadSettlementMeta returns the persisted meta, or the zero value
// (Initialized == false) if none has ever been written.
func (s *Storage) LoadSettlementMeta() (SettlementMeta, error) {
	var m SettlementMeta
	if err := s.getArtifact(metaPrefix, settlementMetaKey, &m); err != nil {
		if err == ErrNotFound {
			return SettlementMeta{}, nil
		}
		return SettlementMeta{}, fmt.Errorf("storage: load settlement meta: %w", err)
	}
	return m, nil
}

// SaveSettlementMeta persists m, overwriting whatever was there.
func (s *Storage) SaveSettlementMeta(m SettlementMeta) error {
	return s.setArtifact(metaPrefix, settlementMetaKey, m)
}

// ProverSet returns the registered prover addresses.
func (s *Storage) ProverSet() ([]common.Address, error) {
	var addrs []common.Address
	if err := s.getArtifact(metaPrefix, proverSetKey, &addrs); err != nil {
		if err == ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: load prover set: %w", err)
	}
	return addrs, nil
}

// AddProver appends addr to the registered prover set, if not already
// present.
func (s *Storage) AddProver(addr common.Address) error {
	addrs, err := s.ProverSet()
	if err != nil {
		return err
	}
	for _, a := range addrs {
		if a == addr {
			return nil
		}
	}
	addrs = append(addrs, addr)
	return s.setArtifact(metaPrefix, proverSetKey, addrs)
}
