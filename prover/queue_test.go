package prover

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/settlement"
)

func TestQueuedBlockRoundTrip(t *testing.T) {
	c := qt.New(t)

	req := &settlement.VerifyBlockRequest{
		AggrProof: []byte{1, 2, 3, 4},
		OldRoot:   field.New(10),
		NewRoot:   field.New(20),
		ExtraHash: field.New(30),
		Height:    42,
		Signatures: []settlement.Signature{
			{R: [32]byte{1}, S: [32]byte{2}, V: 27},
		},
	}
	for i := range req.AggrInstances {
		req.AggrInstances[i] = field.New(uint64(100 + i))
	}
	for i := range req.UtxoHashes {
		req.UtxoHashes[i] = field.New(uint64(200 + i))
	}

	queued := toQueuedBlock(req)
	c.Assert(queued.OldRoot, qt.Equals, req.OldRoot.Bytes32())
	c.Assert(queued.NewRoot, qt.Equals, req.NewRoot.Bytes32())
	c.Assert(queued.Height, qt.Equals, req.Height)

	got, err := FromQueuedBlock(queued)
	c.Assert(err, qt.IsNil)
	c.Assert(got.OldRoot, qt.Equals, req.OldRoot)
	c.Assert(got.NewRoot, qt.Equals, req.NewRoot)
	c.Assert(got.ExtraHash, qt.Equals, req.ExtraHash)
	c.Assert(got.Height, qt.Equals, req.Height)
	c.Assert(got.AggrInstances, qt.DeepEquals, req.AggrInstances)
	c.Assert(got.UtxoHashes, qt.DeepEquals, req.UtxoHashes)
	c.Assert(len(got.Signatures), qt.Equals, 1)
	c.Assert(got.Signatures[0].R, qt.Equals, req.Signatures[0].R)
	c.Assert(got.Signatures[0].V, qt.Equals, req.Signatures[0].V)
}

func TestEnqueueBlock(t *testing.T) {
	c := qt.New(t)
	stg := newTestStorage(t)

	req := &settlement.VerifyBlockRequest{
		OldRoot: field.New(1),
		NewRoot: field.New(2),
		Height:  7,
	}
	c.Assert(EnqueueBlock(stg, req), qt.IsNil)

	queued, _, err := stg.NextBlock()
	c.Assert(err, qt.IsNil)
	c.Assert(queued.Height, qt.Equals, uint64(7))
}
