package aggregator

import (
	"encoding/hex"

	"github.com/shielded-rollup/settlement/circuits"
	"github.com/shielded-rollup/settlement/config"
)

// Artifacts bundles the compiled constraint system and proving/verification
// keys for the recursive aggregator circuit.
var Artifacts = circuits.NewCircuitArtifacts(
	&circuits.Artifact{
		RemoteURL: config.AggregatorCircuitURL,
		Hash:      mustDecodeHash(config.AggregatorCircuitHash),
	},
	&circuits.Artifact{
		RemoteURL: config.AggregatorProvingKeyURL,
		Hash:      mustDecodeHash(config.AggregatorProvingKeyHash),
	},
	&circuits.Artifact{
		RemoteURL: config.AggregatorVerificationKeyURL,
		Hash:      mustDecodeHash(config.AggregatorVerificationKeyHash),
	},
)

func mustDecodeHash(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
