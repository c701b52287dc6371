// Package utxo defines the circuit that proves a single UTXO-kind
// transaction: it spends up to two input notes and creates up to four
// output notes, in balance, under the owner's authorization.
//
// Circuit is a `gnark:",public"`-tagged struct with a Define method that
// delegates to small per-concern helpers; depth and hashing follow
// smirk.Tree.
package utxo

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/poseidon"

	"github.com/shielded-rollup/settlement/circuits/merkle"
)

// MaxInputs and MaxOutputs bound the note counts a single UTXO circuit
// instance may consume/produce, per spec §4.2 ("two input UTXOs and four
// output UTXOs").
const (
	MaxInputs  = 2
	MaxOutputs = 4
	// Depth mirrors smirk.Depth and merkle.Depth; duplicated here (rather
	// than imported from smirk) so this package stays free of a
	// non-circuit dependency on the smirk package.
	Depth = 161
)

// Note is the private witness for one input or output note: the fields
// that, hashed together, form its commitment (spec §3: "C = H(value,
// source, randomness, ownerPubKey)").
type Note struct {
	Value       frontend.Variable
	Source      frontend.Variable
	Randomness  frontend.Variable
	OwnerPubKey frontend.Variable
}

// commitment recomputes H(value, source, randomness, ownerPubKey) for n.
func (n Note) commitment(api frontend.API) frontend.Variable {
	return poseidon.Poseidon(api, n.Value, n.Source, n.Randomness, n.OwnerPubKey)
}

// InputNote additionally carries the Merkle witness proving its
// commitment is included in the tree rooted at RootRef, and the owner
// secret key authorizing its spend.
type InputNote struct {
	Note
	OwnerSecretKey frontend.Variable
	Key            frontend.Variable
	Siblings       [Depth]frontend.Variable
	// Active marks a real, spent input. A circuit instance that spends
	// only one input sets the second slot's Active to 0; its membership
	// check is then vacuous (spec §4.2 allows "two input UTXOs", not
	// exactly two).
	Active frontend.Variable
}

// Circuit proves the validity of one UTXO-kind transaction per spec §4.2.
//
// Public inputs are exactly the three hashes the settlement contract
// records for this slot, in order: (RootRef, MB, Value). A transfer sets
// MB = 0, Value = 0; a mint-consuming UTXO sets MB = the mint commitment
// and Value = the minted amount; a burn-producing UTXO sets MB = the
// nullifier and Value = the burned amount.
type Circuit struct {
	RootRef frontend.Variable `gnark:",public"`
	MB      frontend.Variable `gnark:",public"`
	Value   frontend.Variable `gnark:",public"`

	Inputs  [MaxInputs]InputNote
	Outputs [MaxOutputs]Note

	// IsMint and IsBurn select which side of the balance equation MB/Value
	// participates on; exactly one of them may be set (or neither, for a
	// pure transfer). They are private: the settlement contract, not this
	// circuit, is the authority on whether a given MB value is actually a
	// recorded mint commitment or burn nullifier (spec §4.3 f–g) — this
	// circuit only needs the balance equation to hold under the prover's
	// claim, asserting a derived quantity rather than re-deriving external
	// authority in-circuit.
	IsMint frontend.Variable
	IsBurn frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	api.AssertIsBoolean(c.IsMint)
	api.AssertIsBoolean(c.IsBurn)
	api.AssertIsEqual(api.Mul(c.IsMint, c.IsBurn), 0)

	ownerPubKey := c.Inputs[0].OwnerPubKey
	inputSum := frontend.Variable(0)
	for i := range c.Inputs {
		in := &c.Inputs[i]
		api.AssertIsBoolean(in.Active)
		// Owner consistency and signature checks only bind when Active;
		// an inactive slot is free to carry any padding values.
		ownerMatches := api.IsZero(api.Sub(in.OwnerPubKey, ownerPubKey))
		api.AssertIsEqual(api.Mul(in.Active, api.Sub(1, ownerMatches)), 0)

		sigOK := api.IsZero(api.Sub(poseidon.Poseidon(api, in.OwnerSecretKey), in.OwnerPubKey))
		api.AssertIsEqual(api.Mul(in.Active, api.Sub(1, sigOK)), 0)

		leaf := in.commitment(api)
		rootIfActive := merkle.Root(api, in.Key, leaf, in.Siblings)
		root := api.Select(in.Active, rootIfActive, c.RootRef)
		api.AssertIsEqual(root, c.RootRef)

		inputSum = api.Add(inputSum, api.Mul(in.Active, in.Value))
	}

	outputSum := frontend.Variable(0)
	for i := range c.Outputs {
		c.Outputs[i].commitment(api) // binds the output's fields into the circuit even though the aggregator, not this circuit, consumes the resulting hash
		outputSum = api.Add(outputSum, c.Outputs[i].Value)
	}

	// Σinputs + mintedValue = Σoutputs + burnedValue, per spec §4.2.
	lhs := api.Add(inputSum, api.Mul(c.IsMint, c.Value))
	rhs := api.Add(outputSum, api.Mul(c.IsBurn, c.Value))
	api.AssertIsEqual(lhs, rhs)

	return nil
}
