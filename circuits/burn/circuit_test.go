package burn_test

import (
	"os"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/test"
	"github.com/shielded-rollup/settlement/circuits/burn"
	"github.com/shielded-rollup/settlement/field"
	"github.com/shielded-rollup/settlement/hash"
)

func TestBurnAuthorization(t *testing.T) {
	if os.Getenv("RUN_CIRCUIT_TESTS") == "" {
		t.Skip("skipping circuit test; set RUN_CIRCUIT_TESTS=1 to run")
	}

	sk := field.New(9)
	pubKey, err := hash.Poseidon(sk)
	if err != nil {
		t.Fatal(err)
	}

	to := field.New(0xdeadbeef)
	value := field.New(100)
	source := field.New(2)
	randomness := field.New(55)

	nullifier, err := hash.Poseidon(sk, randomness, source)
	if err != nil {
		t.Fatal(err)
	}
	sig, err := hash.Poseidon(sk, to)
	if err != nil {
		t.Fatal(err)
	}

	witness := &burn.Circuit{
		To:             to.BigInt(),
		Nullifier:      nullifier.BigInt(),
		Value:          value.BigInt(),
		Source:         source.BigInt(),
		Sig:            sig.BigInt(),
		OwnerSecretKey: sk.BigInt(),
		OwnerPubKey:    pubKey.BigInt(),
		Randomness:     randomness.BigInt(),
	}

	assert := test.NewAssert(t)
	assert.ProverSucceeded(&burn.Circuit{}, witness, test.WithCurves(ecc.BN254), test.WithBackends(backend.GROTH16))
}
