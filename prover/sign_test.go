package prover

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/settlement"
	"github.com/shielded-rollup/settlement/validator"
)

func TestSignBlockAppendsRecoverableSignatures(t *testing.T) {
	c := qt.New(t)

	var keys []*validator.SignKeys
	for i := 0; i < 3; i++ {
		k := validator.NewSignKeys()
		c.Assert(k.Generate(), qt.IsNil)
		keys = append(keys, k)
	}

	req := &settlement.VerifyBlockRequest{
		NewRoot:   field.New(5),
		ExtraHash: field.New(6),
		Height:    9,
	}
	c.Assert(SignBlock(req, keys...), qt.IsNil)
	c.Assert(len(req.Signatures), qt.Equals, len(keys))

	_, _, digest := settlement.ProposalDigest(req.NewRoot, req.ExtraHash, req.Height)
	for i, sig := range req.Signatures {
		addr, err := validator.RecoverSigner(digest, sig.R, sig.S, sig.V)
		c.Assert(err, qt.IsNil)
		c.Assert(addr, qt.Equals, keys[i].Address())
	}
}

func TestSignBlockAppendsToExistingSignatures(t *testing.T) {
	c := qt.New(t)

	k1 := validator.NewSignKeys()
	c.Assert(k1.Generate(), qt.IsNil)
	k2 := validator.NewSignKeys()
	c.Assert(k2.Generate(), qt.IsNil)

	req := &settlement.VerifyBlockRequest{Height: 1}
	c.Assert(SignBlock(req, k1), qt.IsNil)
	c.Assert(SignBlock(req, k2), qt.IsNil)
	c.Assert(len(req.Signatures), qt.Equals, 2)
}
