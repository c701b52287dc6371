// Package storage persists the settlement protocol's off-chain-visible
// state: the pending mint/burn ledgers, the recent-root ring, validator-set
// snapshots, and the queue of assembled-but-unsubmitted blocks. It is
// a thin, prefixed key-value layer over go.vocdoni.io/dvote/db, the same
// store smirk uses for its node arena, so a settlement node can run both
// out of one on-disk database.
//
// Keys are namespaced by a short byte prefix, matching the reference
// repo's convention:
//   - 'mint/' for the pending mint ledger
//   - 'burn/' for the pending burn ledger
//   - 'root/' for the recent-root ring
//   - 'vset/' for validator-set snapshots
//   - 'blk/'  for the queued-block queue
//   - 'tx/'   for the pending-transaction queue
//
// Queue entries are keyed by a truncated hash of their encoded content
// (hashKey), so the queues are read in key order, not submission order.
//   - 'rsv/'  for in-flight reservations against 'blk/' and 'tx/'
package storage

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	mintPrefix       = []byte("mint/")
	burnPrefix       = []byte("burn/")
	rootRingPrefix   = []byte("root/")
	validatorPrefix  = []byte("vset/")
	blockPrefix      = []byte("blk/")
	txPrefix         = []byte("tx/")
	reservedPrefix   = []byte("rsv/")
	ringMetaKey      = []byte("meta")
	validatorSeqKey  = []byte("seq")
)

// maxKeySize truncates a content hash used as a synthetic key (e.g. for
// queued blocks, which have no natural unique key of their own).
const maxKeySize = 12

// Storage is the persistence handle for one settlement node. The zero
// value is not usable; construct with New.
type Storage struct {
	db         db.Database
	globalLock sync.Mutex // guards the block queue's reserve/commit sequence
}

// New wraps an existing database. The database is shared with, and must
// remain compatible with, any smirk.Tree constructed over the same
// underlying store.
func New(database db.Database) *Storage {
	return &Storage{db: database}
}

// Close closes the underlying database.
func (s *Storage) Close() {
	s.db.Close()
}

func encodeArtifact(v any) ([]byte, error) {
	encOpts := cbor.CoreDetEncOptions()
	em, err := encOpts.EncMode()
	if err != nil {
		return nil, fmt.Errorf("storage: encode: %w", err)
	}
	return em.Marshal(v)
}

func decodeArtifact(data []byte, out any) error {
	return cbor.Unmarshal(data, out)
}

// setArtifact CBOR-encodes v and stores it at key under prefix, in its own
// committed write transaction.
func (s *Storage) setArtifact(prefix, key []byte, v any) error {
	data, err := encodeArtifact(v)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// getArtifact decodes the value at key under prefix into out. Returns
// ErrNotFound if absent.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := rTx.Get(key)
	if err != nil {
		return ErrNotFound
	}
	return decodeArtifact(data, out)
}

// hasArtifact reports whether key exists under prefix, without decoding it.
func (s *Storage) hasArtifact(prefix, key []byte) bool {
	rTx := prefixeddb.NewPrefixedReader(s.db, prefix)
	_, err := rTx.Get(key)
	return err == nil
}

// deleteArtifact removes key under prefix. It is a no-op, not an error, if
// the key is already absent.
func (s *Storage) deleteArtifact(prefix, key []byte) error {
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		return nil
	}
	return wTx.Commit()
}

func hashKey(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:maxKeySize]
}

// isReserved reports whether key already has a reservation marker under
// reservedPrefix's namespace, disambiguated by queue via queuePrefix.
func (s *Storage) isReserved(queuePrefix, key []byte) bool {
	return s.hasArtifact(append(append([]byte{}, reservedPrefix...), queuePrefix...), key)
}

// setReservation marks key as reserved within queuePrefix's namespace.
func (s *Storage) setReservation(queuePrefix, key []byte) error {
	return s.setArtifact(append(append([]byte{}, reservedPrefix...), queuePrefix...), key, true)
}

// clearReservation removes key's reservation marker, if any.
func (s *Storage) clearReservation(queuePrefix, key []byte) error {
	return s.deleteArtifact(append(append([]byte{}, reservedPrefix...), queuePrefix...), key)
}
