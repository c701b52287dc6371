package utxo_test

import (
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/test"
	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/circuits/utxo"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/hash"
	"github.com/shielded-rollup/settlement/smirk"
	"go.vocdoni.io/dvote/db/metadb"
)

func skipUnlessEnabled(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" {
		t.Skip("skipping circuit test; set RUN_CIRCUIT_TESTS=1 to run")
	}
}

func TestCircuitCompiles(t *testing.T) {
	skipUnlessEnabled(t)
	c := qt.New(t)
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &utxo.Circuit{})
	c.Assert(err, qt.IsNil)
}

// TestTransferBalances builds a pure transfer (MB=0, Value=0) spending one
// input note whose commitment is the tree's only leaf, and proves it.
func TestTransferBalances(t *testing.T) {
	skipUnlessEnabled(t)
	c := qt.New(t)

	database := metadb.NewTest(t)
	tr := smirk.New(database)

	ownerSK := field.New(7)
	ownerPK, err := hash.Poseidon(ownerSK)
	c.Assert(err, qt.IsNil)

	in := utxo.PlainNote{Value: field.New(10), Source: field.New(1), Randomness: field.New(42), OwnerPubKey: ownerPK}
	key := field.New(123)

	wtx := database.WriteTx()
	tr2, err := tr.Insert(wtx, key, in.Commitment())
	c.Assert(err, qt.IsNil)
	c.Assert(wtx.Commit(), qt.IsNil)

	w, err := tr2.Prove(key)
	c.Assert(err, qt.IsNil)

	out := utxo.PlainNote{Value: field.New(10), Source: field.New(0), Randomness: field.New(99), OwnerPubKey: ownerPK}

	assignment := utxo.Assignment{
		RootRef: tr2.Root(),
		MB:      field.Zero(),
		Value:   field.Zero(),
		Inputs: [utxo.MaxInputs]utxo.PlainInputNote{
			{PlainNote: in, OwnerSecretKey: ownerSK, Key: key, Witness: w},
		},
		Outputs: [utxo.MaxOutputs]utxo.PlainNote{out},
	}
	circuit, err := assignment.ToCircuit()
	c.Assert(err, qt.IsNil)

	assert := test.NewAssert(t)
	assert.ProverSucceeded(&utxo.Circuit{}, circuit, test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
}
