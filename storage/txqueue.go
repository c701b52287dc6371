package storage

import (
	"fmt"

	"go.vocdoni.io/dvote/db/prefixeddb"
)

// PendingTx is a user-submitted UTXO transaction awaiting batching into a
// block: the cbor-encoded circuits/utxo witness plus the three public
// words (root_ref, mb, value) the settlement contract ultimately reads
// from that slot, per spec.md §2's off-chain data-flow paragraph.
type PendingTx struct {
	RootRef []byte
	MB      []byte
	Value   []byte
	Witness []byte
}

// PushTx enqueues a submitted transaction for later batching.
func (s *Storage) PushTx(tx *PendingTx) error {
	val, err := encodeArtifact(tx)
	if err != nil {
		return fmt.Errorf("storage: encode pending tx: %w", err)
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), txPrefix)
	key := hashKey(val)
	if err := wTx.Set(key, val); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// NextTxBatch returns up to n non-reserved pending transactions and
// reserves each of them, mirroring NextBlock's reservation semantics.
func (s *Storage) NextTxBatch(n int) ([]*PendingTx, [][]byte, error) {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	pr := prefixeddb.NewPrefixedReader(s.db, txPrefix)
	var txs []*PendingTx
	var keys [][]byte
	if err := pr.Iterate(nil, func(k, v []byte) bool {
		if len(txs) >= n {
			return false
		}
		if s.isReserved(txPrefix, k) {
			return true
		}
		var tx PendingTx
		if err := decodeArtifact(v, &tx); err != nil {
			return true
		}
		txs = append(txs, &tx)
		keys = append(keys, k)
		return len(txs) < n
	}); err != nil {
		return nil, nil, fmt.Errorf("storage: iterate pending tx queue: %w", err)
	}
	for _, k := range keys {
		if err := s.setReservation(txPrefix, k); err != nil {
			return nil, nil, fmt.Errorf("storage: reserve pending tx: %w", err)
		}
	}
	return txs, keys, nil
}

// MarkTxDone removes a transaction and its reservation once it has been
// folded into an accepted block.
func (s *Storage) MarkTxDone(key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if err := s.clearReservation(txPrefix, key); err != nil {
		return fmt.Errorf("storage: clear tx reservation: %w", err)
	}
	return s.deleteArtifact(txPrefix, key)
}

// ReleaseTx drops a transaction's reservation without deleting it, so a
// failed batch attempt can retry it later.
func (s *Storage) ReleaseTx(key []byte) error {
	s.globalLock.Lock()
	defer s.globalLock.Unlock()
	return s.clearReservation(txPrefix, key)
}
