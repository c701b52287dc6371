package aggregator_test

import (
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	qt "github.com/frankban/quicktest"
	"github.com/shielded-rollup/settlement/circuits/aggregator"
	"github.com/shielded-rollup/settlement/field"
)

func TestCircuitCompiles(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" {
		t.Skip("skipping circuit test; set RUN_CIRCUIT_TESTS=1 to run")
	}
	c := qt.New(t)
	_, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &aggregator.Circuit{})
	c.Assert(err, qt.IsNil)
}

// TestInactiveMutationStaysInactive checks that a Mutation built with
// Active false keeps that flag when placed in a SlotMutations assignment,
// whatever its Key/Leaf values.
func TestInactiveMutationStaysInactive(t *testing.T) {
	c := qt.New(t)

	m := aggregator.Mutation{
		Key:     field.New(7),
		OldLeaf: field.New(1),
		NewLeaf: field.New(2),
		Active:  false,
	}
	assignment := aggregator.SlotMutations{NullifierInsert: m}
	c.Assert(assignment.NullifierInsert.Active, qt.IsFalse)
}
