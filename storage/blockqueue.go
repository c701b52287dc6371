package storage

import (
	"fmt"

	"go.vocdoni.io/dvote/db/prefixeddb"
)

// Signature is the ABI-level (r, s, v) ECDSA signature shape from spec §6.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint8
}

// QueuedBlock is an assembled-but-unsubmitted verifyBlock call, built by
// prover and drained by whatever submits transactions to the settlement
// contract (or, in this repo, to settlement.Settlement directly).
type QueuedBlock struct {
	AggrProof     []byte
	AggrInstances [12][32]byte
	OldRoot       [32]byte
	NewRoot       [32]byte
	UtxoHashes    [18][32]byte
	ExtraHash     [32]byte
	Height        uint64
	Signatures    []Signature
}

// PushBlock enqueues an assembled block for later submission.
func (s *Storage) PushBlock(b *QueuedBlock) error {
	val, err := encodeArtifact(b)
	if err != nil {
		return fmt.Errorf("storage: encode block: %w", err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), blockPrefix)
	key := hashKey(val)
	if err := wTx.Set(key, val); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// NextBlock returns the first non-reserved queued block in key order and
// reserves it. Keys are content hashes, so this is not necessarily the
// oldest queued block.
// Returns ErrNoMoreElements if the queue is empty or every entry is
// already reserved.
func (s *Storage) NextBlock() (*QueuedBlock, []byte, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	pr := prefixeddb.NewPrefixedReader(s.db, blockPrefix)
	var chosenKey, chosenVal []byte
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		if s.isReserved(blockPrefix, k) {
			return true
		}
		chosenKey = k
		chosenVal = v
		return false
	}); err != nil {
		return nil, nil, fmt.Errorf("storage: iterate block queue: %w", err)
	}
	if chosenVal == nil {
		return nil, nil, ErrNoMoreElements
	}

	var b QueuedBlock
	if err := decodeArtifact(chosenVal, &b); err != nil {
		return nil, nil, fmt.Errorf("storage: decode block: %w", err)
	}
	if err := s.setReservation(blockPrefix, chosenKey); err != nil {
		return nil, nil, ErrNoMoreElements
	}
	return &b, chosenKey, nil
}

// MarkBlockDone removes a block and its reservation once it has been
// accepted (or permanently rejected) by the settlement layer.
func (s *Storage) MarkBlockDone(key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if err := s.clearReservation(blockPrefix, key); err != nil {
		return fmt.Errorf("storage: clear block reservation: %w", err)
	}
	return s.deleteArtifact(blockPrefix, key)
}

// ReleaseBlock drops a block's reservation without deleting it, so it can
// be picked up again (e.g. after the submission attempt failed).
func (s *Storage) ReleaseBlock(key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.clearReservation(blockPrefix, key)
}
