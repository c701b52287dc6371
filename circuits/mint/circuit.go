// Package mint defines the circuit backing the settlement contract's
// mint(proof, commitment, value, source) entrypoint: it proves knowledge
// of a UTXO commitment's preimage without revealing the owner.
//
// Small and single-purpose: a minimal Define using the same Poseidon
// commitment used throughout this package's circuits.
package mint

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/poseidon"
)

// Circuit proves the caller knows (source, randomness, ownerPubKey) such
// that H(value, source, randomness, ownerPubKey) = commitment, per spec
// §4.2 ("Public inputs [commitment, value, source]").
type Circuit struct {
	Commitment frontend.Variable `gnark:",public"`
	Value      frontend.Variable `gnark:",public"`
	Source     frontend.Variable `gnark:",public"`

	Randomness  frontend.Variable
	OwnerPubKey frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	computed := poseidon.Poseidon(api, c.Value, c.Source, c.Randomness, c.OwnerPubKey)
	api.AssertIsEqual(computed, c.Commitment)
	return nil
}
