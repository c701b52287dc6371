package utxo

import (
	"fmt"

	"github.com/consensys/gnark/frontend"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/hash"
	"github.com/shielded-rollup/settlement/smirk"
)

// PlainNote is the off-circuit representation of a note, used to build a
// witness assignment without touching frontend.Variable directly.
type PlainNote struct {
	Value       field.Element
	Source      field.Element
	Randomness  field.Element
	OwnerPubKey field.Element
}

// Commitment computes this note's commitment the same way hash.Commitment
// does, mirroring Note.commitment inside the circuit.
func (n PlainNote) Commitment() field.Element {
	return hash.Commitment(n.Value, n.Source, n.Randomness, n.OwnerPubKey)
}

// PlainInputNote pairs a PlainNote with its spend authorization and Merkle
// witness against a given tree.
type PlainInputNote struct {
	PlainNote
	OwnerSecretKey field.Element
	Key            field.Element
	Witness        *smirk.Witness
}

// Assignment builds a full Circuit witness from plain values.
type Assignment struct {
	RootRef field.Element
	MB      field.Element
	Value   field.Element

	Inputs  [MaxInputs]PlainInputNote
	Outputs [MaxOutputs]PlainNote

	IsMint bool
	IsBurn bool
}

// ToCircuit converts a into a *Circuit ready to hand to gnark's witness
// builder (frontend.NewWitness / test.NewAssert.ProverSucceeded).
func (a Assignment) ToCircuit() (*Circuit, error) {
	if a.IsMint && a.IsBurn {
		return nil, fmt.Errorf("utxo: a transaction cannot be both mint-consuming and burn-producing")
	}

	c := &Circuit{
		RootRef: a.RootRef.BigInt(),
		MB:      a.MB.BigInt(),
		Value:   a.Value.BigInt(),
		IsMint:  boolVar(a.IsMint),
		IsBurn:  boolVar(a.IsBurn),
	}

	for i, in := range a.Inputs {
		// A zero-value slot (no witness attached) pads an unused input;
		// its membership check is neutralized by Active = 0 in the
		// circuit, per InputNote.Active's doc comment.
		active := in.Witness != nil
		c.Inputs[i] = InputNote{
			Note: Note{
				Value:       in.Value.BigInt(),
				Source:      in.Source.BigInt(),
				Randomness:  in.Randomness.BigInt(),
				OwnerPubKey: in.OwnerPubKey.BigInt(),
			},
			OwnerSecretKey: in.OwnerSecretKey.BigInt(),
			Key:            in.Key.BigInt(),
			Active:         boolVar(active),
		}
		if active {
			for d := 0; d < Depth; d++ {
				c.Inputs[i].Siblings[d] = in.Witness.Siblings[d].BigInt()
			}
		} else {
			for d := 0; d < Depth; d++ {
				c.Inputs[i].Siblings[d] = field.Zero().BigInt()
			}
		}
	}

	for i, out := range a.Outputs {
		c.Outputs[i] = Note{
			Value:       out.Value.BigInt(),
			Source:      out.Source.BigInt(),
			Randomness:  out.Randomness.BigInt(),
			OwnerPubKey: out.OwnerPubKey.BigInt(),
		}
	}

	return c, nil
}

func boolVar(b bool) frontend.Variable {
	if b {
		return 1
	}
	return 0
}
