package prover

import (
	"bytes"
	"context"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/frontend"

	"github.com/shielded-rollup/settlement/circuits/aggregator"
	"github.com/shielded-rollup/settlement/circuits/utxo"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/log"
	"github.com/shielded-rollup/settlement/settlement"
	"go.vocdoni.io/dvote/db"
)

// slotResult is one batched UTXO's proof, full witness and tree
// mutations, the off-circuit counterpart of aggregator.UTXOSlot. The full
// witness (not its public projection) is kept: stdgroth16.ValueOfWitness
// extracts the public part itself.
type slotResult struct {
	proof    groth16.Proof
	witness  witness.Witness
	hashes   [3]field.Element
	mutation aggregator.SlotMutations
	txKey    []byte // storage key, nil for a synthetic padding slot
}

// BuildBlock drains up to BatchSize pending transactions, proves each
// against the working tree, folds the batch into a recursive aggregator
// proof, and returns an unsigned settlement.VerifyBlockRequest (Signatures
// is left nil; a validator-signing step fills it in before submission).
// Under-full batches are padded with zero-value, zero-root_ref UTXOs, per
// spec §9's "V4's acceptance of a zero root_ref ... encode[s] padding
// UTXOs in under-full blocks".
func (p *Prover) BuildBlock(ctx context.Context, height uint64, extraHash field.Element) (*settlement.VerifyBlockRequest, [][]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	oldRoot := p.tree.Root()

	txs, keys, err := p.stg.NextTxBatch(BatchSize)
	if err != nil {
		return nil, nil, fmt.Errorf("prover: pull pending tx batch: %w", err)
	}

	slots := make([]slotResult, 0, BatchSize)
	for i, tx := range txs {
		req, err := decodeTxRequest(tx.Witness)
		if err != nil {
			return nil, nil, fmt.Errorf("prover: tx %d: %w", i, err)
		}
		res, err := p.proveSlot(req)
		if err != nil {
			return nil, nil, fmt.Errorf("prover: tx %d: %w", i, err)
		}
		res.txKey = keys[i]
		slots = append(slots, res)
	}
	for len(slots) < BatchSize {
		res, err := p.proveSlot(paddingRequest())
		if err != nil {
			return nil, nil, fmt.Errorf("prover: padding slot %d: %w", len(slots), err)
		}
		slots = append(slots, res)
	}

	newRoot := p.tree.Root()

	assignment := aggregator.Assignment{OldRoot: oldRoot, NewRoot: newRoot}
	var utxoHashesFlat [18]field.Element
	for i, s := range slots {
		assignment.Proofs[i] = aggregator.InnerProofWitness{Proof: s.proof, Witness: s.witness}
		assignment.Mutations[i] = s.mutation
		assignment.UtxoHashes[i] = s.hashes
		utxoHashesFlat[i*3+0] = s.hashes[0]
		utxoHashesFlat[i*3+1] = s.hashes[1]
		utxoHashesFlat[i*3+2] = s.hashes[2]
	}

	circuit, err := assignment.ToCircuit()
	if err != nil {
		return nil, nil, fmt.Errorf("prover: build aggregator circuit: %w", err)
	}
	witness, err := frontend.NewWitness(circuit, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, fmt.Errorf("prover: build aggregator witness: %w", err)
	}
	proof, err := groth16.Prove(p.aggCcs, p.aggPk, witness)
	if err != nil {
		return nil, nil, fmt.Errorf("prover: prove aggregate batch: %w", err)
	}

	var proofBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		return nil, nil, fmt.Errorf("prover: serialize aggregate proof: %w", err)
	}

	req := &settlement.VerifyBlockRequest{
		AggrProof:     proofBuf.Bytes(),
		AggrInstances: [12]field.Element{}, // opaque ABI slots, unconstrained per spec §4.2
		OldRoot:       oldRoot,
		NewRoot:       newRoot,
		UtxoHashes:    utxoHashesFlat,
		ExtraHash:     extraHash,
		Height:        height,
	}

	doneKeys := make([][]byte, 0, len(keys))
	doneKeys = append(doneKeys, keys...)

	log.Infow("block proposal built", "height", height, "oldRoot", oldRoot.String(), "newRoot", newRoot.String(), "batched", len(txs))
	return req, doneKeys, nil
}

// MarkBlockSubmitted drains the pending-tx queue entries a successfully
// submitted block consumed. Callers should only call this after the
// equivalent settlement.VerifyBlock call (or its on-chain counterpart) has
// actually accepted the block.
func (p *Prover) MarkBlockSubmitted(keys [][]byte) error {
	for _, k := range keys {
		if err := p.stg.MarkTxDone(k); err != nil {
			return fmt.Errorf("prover: mark tx done: %w", err)
		}
	}
	return nil
}

// ReleaseBatch releases every pending tx's reservation without deleting
// it, used when block building or submission fails partway through so the
// same transactions can be retried in the next BuildBlock call.
func (p *Prover) ReleaseBatch(keys [][]byte) error {
	for _, k := range keys {
		if err := p.stg.ReleaseTx(k); err != nil {
			return fmt.Errorf("prover: release tx: %w", err)
		}
	}
	return nil
}

// proveSlot builds a circuits/utxo proof for req, mutates the working
// tree to reflect its inputs/outputs, and returns the resulting slot.
func (p *Prover) proveSlot(req TxRequest) (slotResult, error) {
	assignment, err := req.toAssignment(p.tree)
	if err != nil {
		return slotResult{}, fmt.Errorf("build assignment: %w", err)
	}

	circuit, err := assignment.ToCircuit()
	if err != nil {
		return slotResult{}, fmt.Errorf("build circuit: %w", err)
	}
	witness, err := frontend.NewWitness(circuit, ecc.BN254.ScalarField())
	if err != nil {
		return slotResult{}, fmt.Errorf("build witness: %w", err)
	}
	proof, err := groth16.Prove(p.utxoCcs, p.utxoPk, witness)
	if err != nil {
		return slotResult{}, fmt.Errorf("prove: %w", err)
	}

	mutation, err := p.applyMutations(assignment)
	if err != nil {
		return slotResult{}, fmt.Errorf("apply mutations: %w", err)
	}

	return slotResult{
		proof:    proof,
		witness:  witness,
		hashes:   [3]field.Element{assignment.RootRef, assignment.MB, assignment.Value},
		mutation: mutation,
	}, nil
}

// applyMutations removes a.Inputs' active notes, inserts a.Outputs'
// commitments keyed by their own commitment value, and — for a
// burn-producing transaction — inserts the nullifier leaf, updating
// p.tree in place and returning the off-circuit Mutation set the
// aggregator circuit replays.
func (p *Prover) applyMutations(a utxo.Assignment) (aggregator.SlotMutations, error) {
	var out aggregator.SlotMutations

	for i, in := range a.Inputs {
		if in.Witness == nil {
			continue
		}
		out.InputRemovals[i] = aggregator.MutationFromWitness(in.Key, in.Witness.Leaf, field.Zero(), in.Witness)
		wtx := p.treeWriteTx()
		next, err := p.tree.Remove(wtx, in.Key)
		if err != nil {
			wtx.Discard()
			return out, fmt.Errorf("remove input %d: %w", i, err)
		}
		if err := wtx.Commit(); err != nil {
			return out, fmt.Errorf("commit input removal %d: %w", i, err)
		}
		p.tree = next
	}

	for i, o := range a.Outputs {
		if o.Value.IsZero() && o.Source.IsZero() && o.Randomness.IsZero() && o.OwnerPubKey.IsZero() {
			continue // padding output, never inserted
		}
		key := o.Commitment()
		w, err := p.tree.Prove(key)
		if err != nil {
			return out, fmt.Errorf("witness output %d: %w", i, err)
		}
		out.OutputInserts[i] = aggregator.MutationFromWitness(key, w.Leaf, key, w)
		wtx := p.treeWriteTx()
		next, err := p.tree.Insert(wtx, key, key)
		if err != nil {
			wtx.Discard()
			return out, fmt.Errorf("insert output %d: %w", i, err)
		}
		if err := wtx.Commit(); err != nil {
			return out, fmt.Errorf("commit output insert %d: %w", i, err)
		}
		p.tree = next
	}

	if a.IsBurn {
		key := a.MB // nullifier
		w, err := p.tree.Prove(key)
		if err != nil {
			return out, fmt.Errorf("witness nullifier: %w", err)
		}
		out.NullifierInsert = aggregator.MutationFromWitness(key, w.Leaf, field.One(), w)
		wtx := p.treeWriteTx()
		next, err := p.tree.Insert(wtx, key, field.One())
		if err != nil {
			wtx.Discard()
			return out, fmt.Errorf("insert nullifier: %w", err)
		}
		if err := wtx.Commit(); err != nil {
			return out, fmt.Errorf("commit nullifier insert: %w", err)
		}
		p.tree = next
	}

	return out, nil
}

// paddingRequest builds a zero-value, zero-root_ref UTXO transaction that
// satisfies the circuit with no active inputs or outputs, used to fill
// out an under-full batch.
func paddingRequest() TxRequest {
	return TxRequest{}
}

func (p *Prover) treeWriteTx() db.WriteTx {
	return p.tree.DB().WriteTx()
}
