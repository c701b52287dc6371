package prover

import (
	"fmt"

	"github.com/shielded-rollup/settlement/circuits/utxo"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/smirk"
)

// NoteData is the wire form of a PlainNote: every field as a canonical
// 32-byte little-endian word, so it round-trips through cbor without
// reaching into field.Element's unexported internals.
type NoteData struct {
	Value       [32]byte
	Source      [32]byte
	Randomness  [32]byte
	OwnerPubKey [32]byte
}

func (n NoteData) toPlainNote() (utxo.PlainNote, error) {
	var out utxo.PlainNote
	var err error
	if out.Value, err = field.FromBytes32(n.Value); err != nil {
		return out, fmt.Errorf("prover: note value: %w", err)
	}
	if out.Source, err = field.FromBytes32(n.Source); err != nil {
		return out, fmt.Errorf("prover: note source: %w", err)
	}
	if out.Randomness, err = field.FromBytes32(n.Randomness); err != nil {
		return out, fmt.Errorf("prover: note randomness: %w", err)
	}
	if out.OwnerPubKey, err = field.FromBytes32(n.OwnerPubKey); err != nil {
		return out, fmt.Errorf("prover: note owner pub key: %w", err)
	}
	return out, nil
}

func noteDataFromPlain(n utxo.PlainNote) NoteData {
	return NoteData{
		Value:       n.Value.Bytes32(),
		Source:      n.Source.Bytes32(),
		Randomness:  n.Randomness.Bytes32(),
		OwnerPubKey: n.OwnerPubKey.Bytes32(),
	}
}

// InputData additionally carries the owner secret key and the tree
// position the note is claimed to occupy. Active mirrors
// utxo.PlainInputNote's Witness-presence convention: a zero-valued,
// inactive slot pads an unused input.
type InputData struct {
	NoteData
	OwnerSecretKey [32]byte
	Key            [32]byte
	Active         bool
}

// NewInputData wraps a spent note's plaintext plus its owning secret key
// and tree position into wire form, for a caller (typically a wallet)
// assembling a TxRequest to Submit.
func NewInputData(note utxo.PlainNote, ownerSecretKey, key field.Element) InputData {
	return InputData{
		NoteData:       noteDataFromPlain(note),
		OwnerSecretKey: ownerSecretKey.Bytes32(),
		Key:            key.Bytes32(),
		Active:         true,
	}
}

// TxRequest is the submitted-but-unbatched form of one UTXO transaction:
// everything Submit needs to build a circuits/utxo witness once it is
// picked up by BuildBlock, encoded with fixed-width byte arrays so it
// round-trips losslessly through storage's cbor envelope.
type TxRequest struct {
	RootRef [32]byte
	MB      [32]byte
	Value   [32]byte
	IsMint  bool
	IsBurn  bool

	Inputs  [utxo.MaxInputs]InputData
	Outputs [utxo.MaxOutputs]NoteData
}

// toAssignment reconstructs a utxo.Assignment from req, reattaching each
// active input's Merkle witness by re-deriving it from tree against the
// key the submitter claims.
func (req TxRequest) toAssignment(tree *smirk.Tree) (utxo.Assignment, error) {
	var a utxo.Assignment
	var err error
	if a.RootRef, err = field.FromBytes32(req.RootRef); err != nil {
		return a, fmt.Errorf("prover: root_ref: %w", err)
	}
	if a.MB, err = field.FromBytes32(req.MB); err != nil {
		return a, fmt.Errorf("prover: mb: %w", err)
	}
	if a.Value, err = field.FromBytes32(req.Value); err != nil {
		return a, fmt.Errorf("prover: value: %w", err)
	}
	a.IsMint = req.IsMint
	a.IsBurn = req.IsBurn

	for i, in := range req.Inputs {
		if !in.Active {
			continue
		}
		note, err := in.NoteData.toPlainNote()
		if err != nil {
			return a, fmt.Errorf("prover: input %d: %w", i, err)
		}
		key, err := field.FromBytes32(in.Key)
		if err != nil {
			return a, fmt.Errorf("prover: input %d key: %w", i, err)
		}
		sk, err := field.FromBytes32(in.OwnerSecretKey)
		if err != nil {
			return a, fmt.Errorf("prover: input %d owner secret key: %w", i, err)
		}
		w, err := tree.Prove(key)
		if err != nil {
			return a, fmt.Errorf("prover: input %d witness: %w", i, err)
		}
		a.Inputs[i] = utxo.PlainInputNote{PlainNote: note, OwnerSecretKey: sk, Key: key, Witness: w}
	}

	for i, out := range req.Outputs {
		note, err := out.toPlainNote()
		if err != nil {
			return a, fmt.Errorf("prover: output %d: %w", i, err)
		}
		a.Outputs[i] = note
	}

	return a, nil
}
