package prover

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/shielded-rollup/settlement/storage"
)

// Submit enqueues a UTXO transaction for the next BuildBlock call to
// batch. The Merkle witnesses for req's active inputs are re-derived from
// the working tree at BuildBlock time, not here, so Submit itself never
// touches the tree.
func (p *Prover) Submit(req TxRequest) error {
	witness, err := cbor.Marshal(req)
	if err != nil {
		return fmt.Errorf("prover: encode tx request: %w", err)
	}
	return p.stg.PushTx(&storage.PendingTx{
		RootRef: req.RootRef[:],
		MB:      req.MB[:],
		Value:   req.Value[:],
		Witness: witness,
	})
}

func decodeTxRequest(raw []byte) (TxRequest, error) {
	var req TxRequest
	if err := cbor.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("prover: decode tx request: %w", err)
	}
	return req, nil
}
