package prover

import (
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/settlement"
	"github.com/shielded-rollup/settlement/storage"
)

// EnqueueBlock converts a signed VerifyBlockRequest into the [32]byte-wire
// QueuedBlock shape and pushes it to stg's block queue, the hand-off point
// between a prover node (which only ever computes with field.Element) and
// whatever eventually submits the call (which only ever deals in raw
// 32-byte ABI words).
func EnqueueBlock(stg *storage.Storage, req *settlement.VerifyBlockRequest) error {
	return stg.PushBlock(toQueuedBlock(req))
}

func toQueuedBlock(req *settlement.VerifyBlockRequest) *storage.QueuedBlock {
	b := &storage.QueuedBlock{
		AggrProof: append([]byte(nil), req.AggrProof...),
		OldRoot:   req.OldRoot.Bytes32(),
		NewRoot:   req.NewRoot.Bytes32(),
		ExtraHash: req.ExtraHash.Bytes32(),
		Height:    req.Height,
	}
	for i, e := range req.AggrInstances {
		b.AggrInstances[i] = e.Bytes32()
	}
	for i, e := range req.UtxoHashes {
		b.UtxoHashes[i] = e.Bytes32()
	}
	b.Signatures = make([]storage.Signature, len(req.Signatures))
	for i, s := range req.Signatures {
		b.Signatures[i] = storage.Signature{R: s.R, S: s.S, V: s.V}
	}
	return b
}

// FromQueuedBlock reconstructs a VerifyBlockRequest from a queued block,
// used by whatever drains storage.NextBlock to call settlement.VerifyBlock
// directly rather than against a deployed contract.
func FromQueuedBlock(b *storage.QueuedBlock) (*settlement.VerifyBlockRequest, error) {
	req := &settlement.VerifyBlockRequest{
		AggrProof: append([]byte(nil), b.AggrProof...),
		Height:    b.Height,
	}
	var err error
	if req.OldRoot, err = field.FromBytes32(b.OldRoot); err != nil {
		return nil, err
	}
	if req.NewRoot, err = field.FromBytes32(b.NewRoot); err != nil {
		return nil, err
	}
	if req.ExtraHash, err = field.FromBytes32(b.ExtraHash); err != nil {
		return nil, err
	}
	for i, w := range b.AggrInstances {
		if req.AggrInstances[i], err = field.FromBytes32(w); err != nil {
			return nil, err
		}
	}
	for i, w := range b.UtxoHashes {
		if req.UtxoHashes[i], err = field.FromBytes32(w); err != nil {
			return nil, err
		}
	}
	req.Signatures = make([]settlement.Signature, len(b.Signatures))
	for i, s := range b.Signatures {
		req.Signatures[i] = settlement.Signature{R: s.R, S: s.S, V: s.V}
	}
	return req, nil
}
