// Package aggregator defines the circuit that recursively verifies a
// batch of UTXO proofs and constrains the resulting Merkle-tree
// transition, producing the single proof the settlement contract's
// verifyBlock gate actually checks.
//
// A fixed-size array of inner proofs is verified in a loop, each slot an
// sw_bn254-typed Proof/VerifyingKey/Witness triple. Unlike a multi-hop
// curve tower that switches native curve at each recursion step to keep
// pairing verification non-emulated, this circuit is compiled natively
// over BN254 itself: the inner UTXO/mint/burn proofs are also BN254-native,
// so their verification here goes through sw_bn254's *emulated* field
// arithmetic rather than a native pairing. That is the trade spec §4.2's
// "all circuits target the same curve" calls for — a single aggregate
// proof that is itself BN254 and therefore directly callable from
// evmverifier with no further wrapping circuit — at the cost of the
// proving-time efficiency a full curve tower would buy back. It also
// keeps the circuits/merkle transition gadget's Poseidon round constants
// valid, since those are only defined over BN254's scalar field.
package aggregator

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bn254"
	stdgroth16 "github.com/consensys/gnark/std/recursion/groth16"

	"github.com/shielded-rollup/settlement/circuits/merkle"
)

// MaxUTXOs is the batch size the aggregator always proves, per spec
// §4.2 ("recursively verifies six UTXO proofs").
const MaxUTXOs = 6

// Depth mirrors smirk.Depth and merkle.Depth; duplicated per the circuit
// packages' habit of staying self-contained (see circuits/utxo's
// identical comment).
const Depth = 161

// MaxInputs and MaxOutputs mirror circuits/utxo's note-count bounds.
const (
	MaxInputs  = 2
	MaxOutputs = 4
)

// InnerProof is a recursively-verified circuits/utxo Groth16 proof,
// native to BN254.
type InnerProof struct {
	Proof   stdgroth16.Proof[sw_bn254.G1Affine, sw_bn254.G2Affine]
	Witness stdgroth16.Witness[sw_bn254.ScalarField] `gnark:",public"`
}

// TransitionStep is one Merkle-tree mutation (an input removal or an
// output/nullifier insertion) applied while folding OldRoot into NewRoot.
// Active gates the step to a no-op, the same trick circuits/utxo uses to
// pad a variable number of real inputs/outputs into a fixed-size array.
type TransitionStep struct {
	Key      frontend.Variable
	OldLeaf  frontend.Variable
	NewLeaf  frontend.Variable
	Siblings [Depth]frontend.Variable
	Active   frontend.Variable
}

// UTXOSlot bundles one batched UTXO's recursively-verified proof with the
// tree mutations it causes.
type UTXOSlot struct {
	Proof InnerProof

	InputRemovals   [MaxInputs]TransitionStep
	OutputInserts   [MaxOutputs]TransitionStep
	NullifierInsert TransitionStep
}

// Circuit proves spec §4.2's aggregation statement. Public inputs are the
// 32 F-elements in the exact order the settlement contract consumes them:
// 12 opaque aggregation-instance limbs, then OldRoot, NewRoot, then the 18
// utxoHashes.
//
// AggrInstances has no further in-circuit constraint: it is carried for
// ABI parity with spec §4.2's halo2/KZG accumulator slots (themselves
// "opaque to the settlement logic"), which have no equivalent under the
// Groth16 recursion this circuit substitutes for halo2 (see DESIGN.md).
type Circuit struct {
	AggrInstances [12]frontend.Variable         `gnark:",public"`
	OldRoot       frontend.Variable             `gnark:",public"`
	NewRoot       frontend.Variable             `gnark:",public"`
	UtxoHashes    [MaxUTXOs][3]frontend.Variable `gnark:",public"`

	Slots        [MaxUTXOs]UTXOSlot
	VerifyingKey stdgroth16.VerifyingKey[sw_bn254.G1Affine, sw_bn254.G2Affine, sw_bn254.GTEl] `gnark:"-"`
}

func (c *Circuit) Define(api frontend.API) error {
	verifier, err := stdgroth16.NewVerifier[sw_bn254.ScalarField, sw_bn254.G1Affine, sw_bn254.G2Affine, sw_bn254.GTEl](api)
	if err != nil {
		return err
	}

	root := c.OldRoot
	for i := range c.Slots {
		slot := &c.Slots[i]

		if err := verifier.AssertProof(c.VerifyingKey, slot.Proof.Proof, slot.Proof.Witness); err != nil {
			return err
		}

		for j := range slot.InputRemovals {
			root = applyStep(api, root, slot.InputRemovals[j])
		}
		for j := range slot.OutputInserts {
			root = applyStep(api, root, slot.OutputInserts[j])
		}
		root = applyStep(api, root, slot.NullifierInsert)
	}
	api.AssertIsEqual(root, c.NewRoot)

	return nil
}

// applyStep folds one Merkle mutation into root. When step.Active is 0
// both the old- and new-root recomputations are short-circuited to root
// itself, making the step a verified no-op.
func applyStep(api frontend.API, root frontend.Variable, step TransitionStep) frontend.Variable {
	oldRootIfActive := merkle.Root(api, step.Key, step.OldLeaf, step.Siblings)
	consistentOld := api.Select(step.Active, oldRootIfActive, root)
	api.AssertIsEqual(consistentOld, root)

	newRootIfActive := merkle.Root(api, step.Key, step.NewLeaf, step.Siblings)
	return api.Select(step.Active, newRootIfActive, root)
}
