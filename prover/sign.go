package prover

import (
	"fmt"

	"github.com/shielded-rollup/settlement/settlement"
	"github.com/shielded-rollup/settlement/validator"
)

// SignBlock computes spec §3's H1/H2/D digest chain for req and appends
// each key's signature over D, the form settlement.VerifyBlock expects in
// Signatures. BuildBlock itself never signs: it has no opinion on which
// validator set is quorum-eligible, only the caller (typically a
// validator node driving its own SignKeys, or a coordinator collecting
// signatures from several validator nodes over the network) does.
func SignBlock(req *settlement.VerifyBlockRequest, keys ...*validator.SignKeys) error {
	_, _, digest := settlement.ProposalDigest(req.NewRoot, req.ExtraHash, req.Height)

	sigs := make([]settlement.Signature, 0, len(keys))
	for i, k := range keys {
		r, s, v, err := k.SignDigest(digest)
		if err != nil {
			return fmt.Errorf("prover: sign block with key %d: %w", i, err)
		}
		sigs = append(sigs, settlement.Signature{R: r, S: s, V: v})
	}
	req.Signatures = append(req.Signatures, sigs...)
	return nil
}
