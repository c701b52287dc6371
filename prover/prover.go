// Package prover is the off-chain counterpart to settlement.VerifyBlock:
// it batches submitted UTXO transactions, proves each one against the
// working smirk tree, recursively folds the batch into a single
// circuits/aggregator proof, and emits a settlement.VerifyBlockRequest
// ready for validator signatures.
//
// One struct holds the loaded proving material plus a single writer lock
// over the working state, rather than a pool of independently-lockable
// process IDs: this protocol has exactly one writer role, per spec §5.
package prover

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"

	"github.com/shielded-rollup/settlement/circuits/aggregator"
	"github.com/shielded-rollup/settlement/circuits/utxo"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/log"
	"github.com/shielded-rollup/settlement/smirk"
	"github.com/shielded-rollup/settlement/storage"
)

// BatchSize is the number of UTXO transactions folded into one block, per
// spec §4.2's "recursively verifies six UTXO proofs".
const BatchSize = aggregator.MaxUTXOs

// Prover owns the working smirk tree and the loaded proving material for
// the UTXO and aggregator circuits. The zero value is not usable;
// construct with New.
type Prover struct {
	stg  *storage.Storage
	mu   sync.Mutex
	tree *smirk.Tree

	utxoCcs constraint.ConstraintSystem
	utxoPk  groth16.ProvingKey

	aggCcs constraint.ConstraintSystem
	aggPk  groth16.ProvingKey
}

// New builds a Prover over stg's database, loading (via
// circuits.CircuitArtifacts.LoadAll, which reads the local cache or
// downloads and hash-checks) and then decoding the UTXO and aggregator
// circuit artifacts. tree is the working Smirk tree handle at the
// rollup's current root.
func New(ctx context.Context, stg *storage.Storage, tree *smirk.Tree) (*Prover, error) {
	if err := utxo.Artifacts.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("prover: load utxo artifacts: %w", err)
	}
	if err := aggregator.Artifacts.LoadAll(ctx); err != nil {
		return nil, fmt.Errorf("prover: load aggregator artifacts: %w", err)
	}

	utxoCcs := groth16.NewCS(ecc.BN254)
	if _, err := utxoCcs.ReadFrom(bytes.NewReader(utxo.Artifacts.CircuitDefinition.Content)); err != nil {
		return nil, fmt.Errorf("prover: decode utxo circuit definition: %w", err)
	}
	utxoPk := groth16.NewProvingKey(ecc.BN254)
	if _, err := utxoPk.ReadFrom(bytes.NewReader(utxo.Artifacts.ProvingKey.Content)); err != nil {
		return nil, fmt.Errorf("prover: decode utxo proving key: %w", err)
	}

	aggCcs := groth16.NewCS(ecc.BN254)
	if _, err := aggCcs.ReadFrom(bytes.NewReader(aggregator.Artifacts.CircuitDefinition.Content)); err != nil {
		return nil, fmt.Errorf("prover: decode aggregator circuit definition: %w", err)
	}
	aggPk := groth16.NewProvingKey(ecc.BN254)
	if _, err := aggPk.ReadFrom(bytes.NewReader(aggregator.Artifacts.ProvingKey.Content)); err != nil {
		return nil, fmt.Errorf("prover: decode aggregator proving key: %w", err)
	}

	log.Debugw("prover initialized", "batchSize", BatchSize, "root", tree.Root().String())

	return &Prover{
		stg:     stg,
		tree:    tree,
		utxoCcs: utxoCcs,
		utxoPk:  utxoPk,
		aggCcs:  aggCcs,
		aggPk:   aggPk,
	}, nil
}

// Root returns the prover's current working root, the root the next
// BuildBlock call will use as oldRoot.
func (p *Prover) Root() field.Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tree.Root()
}
