package aggregator

import (
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/std/algebra/emulated/sw_bn254"
	stdgroth16 "github.com/consensys/gnark/std/recursion/groth16"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/smirk"
)

// Mutation is the off-circuit counterpart of TransitionStep, built from
// a smirk.Witness the same way circuits/utxo's PlainInputNote wraps one.
type Mutation struct {
	Key, OldLeaf, NewLeaf field.Element
	Siblings              [Depth]field.Element
	Active                bool
}

func (m Mutation) toStep() TransitionStep {
	step := TransitionStep{
		Key:     m.Key.BigInt(),
		OldLeaf: m.OldLeaf.BigInt(),
		NewLeaf: m.NewLeaf.BigInt(),
		Active:  boolVar(m.Active),
	}
	for d := 0; d < Depth; d++ {
		step.Siblings[d] = m.Siblings[d].BigInt()
	}
	return step
}

// MutationFromWitness builds an active Mutation from a smirk membership
// witness, the shape circuits/utxo's InputNote.Siblings assignment uses.
func MutationFromWitness(key, oldLeaf, newLeaf field.Element, w *smirk.Witness) Mutation {
	m := Mutation{Key: key, OldLeaf: oldLeaf, NewLeaf: newLeaf, Active: true}
	copy(m.Siblings[:], w.Siblings[:])
	return m
}

// SlotMutations is the off-circuit counterpart of UTXOSlot's three
// mutation groups.
type SlotMutations struct {
	InputRemovals   [MaxInputs]Mutation
	OutputInserts   [MaxOutputs]Mutation
	NullifierInsert Mutation
}

func boolVar(b bool) int {
	if b {
		return 1
	}
	return 0
}

// InnerProofWitness is the off-circuit (proof, full witness) pair for one
// recursively-verified UTXO proof. Witness holds the full assignment
// witness rather than its already-public-only projection: stdgroth16's
// ValueOfWitness extracts the public part itself via Witness.Public().
type InnerProofWitness struct {
	Proof   groth16.Proof
	Witness witness.Witness
}

// Assignment is the full off-circuit witness builder for Circuit,
// mirroring circuits/utxo's Assignment.ToCircuit pattern one level up the
// recursion.
type Assignment struct {
	AggrInstances [12]field.Element
	OldRoot       field.Element
	NewRoot       field.Element
	UtxoHashes    [MaxUTXOs][3]field.Element

	Proofs    [MaxUTXOs]InnerProofWitness
	Mutations [MaxUTXOs]SlotMutations
}

// ToCircuit converts a into a *Circuit ready for gnark's witness builder.
// The inner Groth16 proof/witness conversion uses stdgroth16's ValueOf
// helpers, the standard bridge between a native proof and its recursive
// (sw_bn254-emulated) in-circuit representation.
func (a Assignment) ToCircuit() (*Circuit, error) {
	c := &Circuit{
		OldRoot: a.OldRoot.BigInt(),
		NewRoot: a.NewRoot.BigInt(),
	}
	for i := range a.AggrInstances {
		c.AggrInstances[i] = a.AggrInstances[i].BigInt()
	}
	for i := range a.UtxoHashes {
		for j := range a.UtxoHashes[i] {
			c.UtxoHashes[i][j] = a.UtxoHashes[i][j].BigInt()
		}
	}

	for i := range a.Proofs {
		proof, err := stdgroth16.ValueOfProof[sw_bn254.G1Affine, sw_bn254.G2Affine](a.Proofs[i].Proof)
		if err != nil {
			return nil, err
		}
		innerWitness, err := stdgroth16.ValueOfWitness[sw_bn254.ScalarField](a.Proofs[i].Witness)
		if err != nil {
			return nil, err
		}
		c.Slots[i].Proof = InnerProof{Proof: proof, Witness: innerWitness}

		for j := range a.Mutations[i].InputRemovals {
			c.Slots[i].InputRemovals[j] = a.Mutations[i].InputRemovals[j].toStep()
		}
		for j := range a.Mutations[i].OutputInserts {
			c.Slots[i].OutputInserts[j] = a.Mutations[i].OutputInserts[j].toStep()
		}
		c.Slots[i].NullifierInsert = a.Mutations[i].NullifierInsert.toStep()
	}

	return c, nil
}

// VerifyingKeyAssignment converts a native utxo verifying key into the
// recursive form Circuit.VerifyingKey expects, called once at prover
// setup rather than per-block.
func VerifyingKeyAssignment(vk groth16.VerifyingKey) (stdgroth16.VerifyingKey[sw_bn254.G1Affine, sw_bn254.G2Affine, sw_bn254.GTEl], error) {
	return stdgroth16.ValueOfVerifyingKey[sw_bn254.G1Affine, sw_bn254.G2Affine, sw_bn254.GTEl](vk)
}
